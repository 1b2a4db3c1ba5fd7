package memory

import (
	"context"
	"sync"

	"github.com/curugbadak/pasar-desa/backend/internal/model/chat"
)

// TranscriptStore keeps audit transcripts in process memory.
type TranscriptStore struct {
	mu    sync.RWMutex
	turns map[string][]chat.Turn
}

// NewTranscriptStore returns an empty store.
func NewTranscriptStore() *TranscriptStore {
	return &TranscriptStore{turns: make(map[string][]chat.Turn)}
}

// Append records a turn at the end of its session transcript.
func (s *TranscriptStore) Append(_ context.Context, turn chat.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns[turn.SessionID] = append(s.turns[turn.SessionID], turn)
	return nil
}

// Load returns the recorded turns of a session in append order.
func (s *TranscriptStore) Load(_ context.Context, sessionID string) ([]chat.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[sessionID]
	copied := make([]chat.Turn, len(turns))
	copy(copied, turns)
	return copied, nil
}

// Close is a no-op.
func (s *TranscriptStore) Close() error {
	return nil
}
