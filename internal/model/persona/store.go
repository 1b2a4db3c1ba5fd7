package persona

import "strings"

// Store exposes the chat assistants to the handlers and the chat service.
type Store interface {
	List() []Persona
	ListByKind(kind Kind) []Persona
	FindByID(id string) (Persona, bool)
}

// MemoryStore keeps the assistants in seed order. Ids are matched
// case-insensitively so links like /personas/Penjual still resolve.
type MemoryStore struct {
	items []Persona
	byID  map[string]int
}

// NewMemoryStore indexes items by id. A later duplicate id replaces the
// earlier entry.
func NewMemoryStore(items []Persona) *MemoryStore {
	s := &MemoryStore{byID: make(map[string]int, len(items))}
	for _, item := range items {
		key := normalizeID(item.ID)
		if i, ok := s.byID[key]; ok {
			s.items[i] = item
			continue
		}
		s.byID[key] = len(s.items)
		s.items = append(s.items, item)
	}
	return s
}

// List returns every assistant.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

// ListByKind returns the assistants running one protocol; store assistants
// for the marketplace, helpdesk assistants for the portal.
func (s *MemoryStore) ListByKind(kind Kind) []Persona {
	out := make([]Persona, 0, len(s.items))
	for _, item := range s.items {
		if item.Kind == kind {
			out = append(out, item)
		}
	}
	return out
}

// FindByID looks up an assistant by id.
func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	i, ok := s.byID[normalizeID(id)]
	if !ok {
		return Persona{}, false
	}
	return s.items[i], true
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
