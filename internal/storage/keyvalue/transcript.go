package keyvalue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/curugbadak/pasar-desa/backend/internal/model/chat"
)

type turnInternal struct {
	ID         string              `json:"id"`
	SessionID  string              `json:"session_id"`
	Role       chat.Role           `json:"role"`
	Text       string              `json:"text"`
	Attachment bool                `json:"attachment,omitempty"`
	Fallback   bool                `json:"fallback,omitempty"`
	Order      *chat.OrderProposal `json:"order,omitempty"`
	CreatedAt  int64               `json:"created_at"`
}

// TranscriptStore records turns as JSON entries of a Redis list per session.
type TranscriptStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTranscriptStore wraps a Redis client. A zero ttl keeps transcripts
// forever.
func NewTranscriptStore(rdb *redis.Client, ttl time.Duration) *TranscriptStore {
	return &TranscriptStore{rdb: rdb, ttl: ttl}
}

// Append pushes a turn onto the session list.
func (s *TranscriptStore) Append(ctx context.Context, turn chat.Turn) error {
	raw, err := json.Marshal(toInternal(turn))
	if err != nil {
		return fmt.Errorf("failed to marshal turn %s: %w", turn.ID, err)
	}

	key := getTranscriptKey(turn.SessionID)
	if err := s.rdb.RPush(ctx, key, raw).Err(); err != nil {
		return fmt.Errorf("failed to push turn to %s: %w", key, err)
	}
	if s.ttl > 0 {
		if err := s.rdb.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("failed to set ttl on %s: %w", key, err)
		}
	}
	return nil
}

// Load returns every recorded turn of a session in push order.
func (s *TranscriptStore) Load(ctx context.Context, sessionID string) ([]chat.Turn, error) {
	key := getTranscriptKey(sessionID)
	items, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	turns := make([]chat.Turn, 0, len(items))
	for _, item := range items {
		var in turnInternal
		if err := json.Unmarshal([]byte(item), &in); err != nil {
			return nil, fmt.Errorf("failed to unmarshal turn in %s: %w", key, err)
		}
		turns = append(turns, fromInternal(in))
	}
	return turns, nil
}

// Close releases the Redis client.
func (s *TranscriptStore) Close() error {
	return s.rdb.Close()
}

func toInternal(turn chat.Turn) turnInternal {
	return turnInternal{
		ID:         turn.ID,
		SessionID:  turn.SessionID,
		Role:       turn.Role,
		Text:       turn.Text,
		Attachment: turn.Attachment,
		Fallback:   turn.Fallback,
		Order:      turn.Order,
		CreatedAt:  turn.CreatedAt.UnixNano(),
	}
}

func fromInternal(in turnInternal) chat.Turn {
	return chat.Turn{
		ID:         in.ID,
		SessionID:  in.SessionID,
		Role:       in.Role,
		Text:       in.Text,
		Attachment: in.Attachment,
		Fallback:   in.Fallback,
		Order:      in.Order,
		CreatedAt:  time.Unix(0, in.CreatedAt).UTC(),
	}
}

func getTranscriptKey(sessionID string) string {
	return fmt.Sprintf("transcript_%v", sessionID)
}
