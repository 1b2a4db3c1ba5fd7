package chat

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/curugbadak/pasar-desa/backend/internal/model/chat"
	chatservice "github.com/curugbadak/pasar-desa/backend/internal/service/chat"
)

func readUntil(t *testing.T, conn *websocket.Conn, msgType string) []outgoingMessage {
	t.Helper()
	var seen []outgoingMessage
	for {
		_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		var msg outgoingMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read %s: %v", msgType, err)
		}
		seen = append(seen, msg)
		if msg.Type == msgType {
			return seen
		}
	}
}

func TestWebSocketOrderFlow(t *testing.T) {
	r, chatSvc := setupRouter(&scriptedCompleter{replies: []string{kopiOrderReply}})
	srv := httptest.NewServer(r)
	defer srv.Close()

	created := createStoreSession(t, r)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/session/" + created.Session.ID + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	hello := readUntil(t, conn, "connected")
	connected := hello[len(hello)-1].Data.(map[string]interface{})
	if turns, ok := connected["turns"].([]interface{}); !ok || len(turns) != 1 {
		t.Fatalf("expected the greeting in the connected message, got %v", connected["turns"])
	}

	if err := conn.WriteJSON(map[string]interface{}{"type": "message", "data": map[string]string{"text": "mau kopi 2"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	msgs := readUntil(t, conn, "state")

	turns := 0
	for _, m := range msgs {
		if m.Type == "turn" {
			turns++
		}
	}
	if turns != 2 {
		t.Fatalf("expected user and assistant turns, got %d", turns)
	}
	state := msgs[len(msgs)-1].Data.(map[string]interface{})
	if state["state"] != string(chat.StateOrderProposed) {
		t.Fatalf("expected order proposed, got %v", state["state"])
	}

	if err := conn.WriteJSON(map[string]string{"type": "dance"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readUntil(t, conn, "error")

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		_, err := chatSvc.GetSession(context.Background(), created.Session.ID)
		if errors.Is(err, chatservice.ErrSessionNotFound) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("session should close with its socket")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	r, _ := setupRouter(&scriptedCompleter{})
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/session/missing/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != 404 {
		t.Fatalf("expected 404 handshake response, got %+v", resp)
	}
}
