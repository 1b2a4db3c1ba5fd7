package keyvalue

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/curugbadak/pasar-desa/backend/internal/model/chat"
)

func testClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("ping redis: %v", err)
	}
	return rdb
}

func TestTranscriptStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	rdb := testClient(t)
	store := NewTranscriptStore(rdb, time.Minute)
	defer store.Close()

	sessionID := uuid.NewString()
	defer rdb.Del(ctx, getTranscriptKey(sessionID))

	proposal := chat.NewOrderProposal([]chat.LineItem{{Name: "Kopi Bubuk", UnitPrice: 25000, Quantity: 2}})
	for _, turn := range []chat.Turn{
		{ID: "t1", SessionID: sessionID, Role: chat.RoleUser, Text: "beli kopi 2", CreatedAt: time.Now()},
		{ID: "t2", SessionID: sessionID, Role: chat.RoleAssistant, Text: "Siap kak", Order: proposal, CreatedAt: time.Now()},
	} {
		if err := store.Append(ctx, turn); err != nil {
			t.Fatalf("Append err: %v", err)
		}
	}

	got, err := store.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if len(got) != 2 || got[1].Order == nil || got[1].Order.Total != 50000 {
		t.Fatalf("unexpected transcript %+v", got)
	}

	ttl, err := rdb.TTL(ctx, getTranscriptKey(sessionID)).Result()
	if err != nil || ttl <= 0 {
		t.Fatalf("expected ttl on transcript key, got %s err=%v", ttl, err)
	}
}

func TestTranscriptKey(t *testing.T) {
	if got := getTranscriptKey("abc"); got != "transcript_abc" {
		t.Fatalf("unexpected key %q", got)
	}
}
