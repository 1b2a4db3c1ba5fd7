package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/curugbadak/pasar-desa/backend/internal/model/catalog"
	"github.com/curugbadak/pasar-desa/backend/internal/model/chat"
	"github.com/curugbadak/pasar-desa/backend/internal/model/persona"
)

var (
	ErrPersonaRequired = errors.New("persona id is required")
	ErrPersonaNotFound = errors.New("persona not found")
	ErrStoreRequired   = errors.New("store id is required for a store assistant")
	ErrSessionNotFound = errors.New("session not found")
)

const recordTimeout = 3 * time.Second

// Recorder keeps an append-only audit copy of turns.
type Recorder interface {
	Append(ctx context.Context, turn chat.Turn) error
	Load(ctx context.Context, sessionID string) ([]chat.Turn, error)
}

// Options configures the chat service.
type Options struct {
	Personas      persona.Store
	Catalog       catalog.Provider
	Completer     Completer
	Recorder      Recorder
	HistoryWindow int
	Timeout       time.Duration
}

// Service owns the live sessions. Each session keeps its own history and
// state; nothing is shared between them.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	personas  persona.Store
	catalog   catalog.Provider
	completer Completer
	recorder  Recorder
	builder   *ContextBuilder
	timeout   time.Duration
}

// NewService wires the collaborators shared by every session.
func NewService(opts Options) *Service {
	if opts.Personas == nil {
		opts.Personas = persona.NewMemoryStore(persona.Seed())
	}
	return &Service{
		sessions:  make(map[string]*Session),
		personas:  opts.Personas,
		catalog:   opts.Catalog,
		completer: opts.Completer,
		recorder:  opts.Recorder,
		builder:   NewContextBuilder(opts.HistoryWindow),
		timeout:   opts.Timeout,
	}
}

// CreateSession opens a session for a persona. Store assistants need a
// store known to the catalog.
func (s *Service) CreateSession(ctx context.Context, personaID, storeID string) (chat.Session, error) {
	if personaID == "" {
		return chat.Session{}, ErrPersonaRequired
	}
	p, ok := s.personas.FindByID(personaID)
	if !ok {
		return chat.Session{}, fmt.Errorf("%w: %s", ErrPersonaNotFound, personaID)
	}

	var store *catalog.Store
	if p.Commerce() {
		if storeID == "" {
			return chat.Session{}, ErrStoreRequired
		}
		if s.catalog == nil {
			return chat.Session{}, fmt.Errorf("%w: no catalog configured", catalog.ErrStoreNotFound)
		}
		found, err := s.catalog.FindStore(ctx, storeID)
		if err != nil {
			return chat.Session{}, err
		}
		store = &found
	}

	session := NewSession(uuid.NewString(), SessionOptions{
		Persona:   p,
		Store:     store,
		Catalog:   s.catalog,
		Completer: s.completer,
		Builder:   s.builder,
		Timeout:   s.timeout,
		OnAppend:  s.record,
	})

	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	log.Printf("[chat] session=%s opened, persona=%s, store=%s", session.ID(), p.ID, storeID)
	return session.Snapshot(), nil
}

// Session returns the live session handle.
func (s *Service) Session(sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// GetSession retrieves a session snapshot by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	return session.Snapshot(), nil
}

// SendMessage forwards a user message to the session.
func (s *Service) SendMessage(ctx context.Context, sessionID, text string) (Outcome, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return Outcome{}, err
	}
	return session.Send(ctx, text)
}

// StreamMessage is SendMessage with partial reply text relayed to onDelta.
func (s *Service) StreamMessage(ctx context.Context, sessionID, text string, onDelta func(string)) (Outcome, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return Outcome{}, err
	}
	return session.SendStream(ctx, text, onDelta)
}

// SubmitProof forwards the payment-proof signal to the session.
func (s *Service) SubmitProof(ctx context.Context, sessionID string) (Outcome, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return Outcome{}, err
	}
	return session.SubmitProof(ctx)
}

// ClearSession resets a session's history.
func (s *Service) ClearSession(_ context.Context, sessionID string) (Outcome, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return Outcome{}, err
	}
	return session.Clear()
}

// CloseSession tears a session down and forgets it. Its audit transcript
// stays with the recorder.
func (s *Service) CloseSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	session.Close()
	return nil
}

// LoadTranscript returns the turns of a live session, or the recorded
// audit transcript once the session is gone.
func (s *Service) LoadTranscript(ctx context.Context, sessionID string) ([]chat.Turn, error) {
	if session, err := s.Session(sessionID); err == nil {
		return session.Transcript(), nil
	}
	if s.recorder == nil {
		return nil, ErrSessionNotFound
	}

	turns, err := s.recorder.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load recorded transcript: %w", err)
	}
	if len(turns) == 0 {
		return nil, ErrSessionNotFound
	}
	return turns, nil
}

func (s *Service) record(turn chat.Turn) {
	if s.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := s.recorder.Append(ctx, turn); err != nil {
		log.Printf("[chat] session=%s failed to record turn %s: %v", turn.SessionID, turn.ID, err)
	}
}
