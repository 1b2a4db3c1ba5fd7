package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sourcegraph/conc"

	chatService "github.com/curugbadak/pasar-desa/backend/internal/service/chat"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type textPayload struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// peer serializes writes to one socket; gorilla allows a single writer.
type peer struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	sessionID string
}

func (p *peer) send(msgType string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_ = p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	msg := outgoingMessage{
		Type:      msgType,
		SessionID: p.sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := p.conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] session=%s write %s failed: %v", p.sessionID, msgType, err)
	}
}

func (p *peer) ping() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

func (p *peer) sendError(err error) {
	p.send("error", map[string]interface{}{
		"message": err.Error(),
		"status":  StatusFor(err),
	})
}

// handleWebSocket runs one chat surface over a socket. The session is closed
// when the socket goes away, so replies still in flight are discarded.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] session=%s connected", sessionID)

	ctx, cancel := context.WithCancel(context.Background())
	p := &peer{conn: conn, sessionID: sessionID}

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	wg := conc.NewWaitGroup()
	wg.Go(func() {
		pingLoop(ctx, p)
	})

	turns, err := h.chatSvc.LoadTranscript(ctx, sessionID)
	if err != nil {
		log.Printf("[websocket] session=%s failed to load transcript: %v", sessionID, err)
	}
	p.send("connected", map[string]interface{}{
		"session": session,
		"turns":   turns,
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] session=%s read error: %v", sessionID, err)
			}
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		wg.Go(func() {
			h.dispatch(ctx, p, msg)
		})
	}

	if err := h.chatSvc.CloseSession(ctx, sessionID); err != nil && !errors.Is(err, chatService.ErrSessionNotFound) {
		log.Printf("[websocket] session=%s close failed: %v", sessionID, err)
	}
	cancel()
	wg.Wait()
	log.Printf("[websocket] session=%s disconnected", sessionID)
}

func (h *Handler) dispatch(ctx context.Context, p *peer, msg inboundMessage) {
	var (
		outcome chatService.Outcome
		err     error
	)

	switch msg.Type {
	case "message":
		var payload textPayload
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &payload); err != nil {
				p.send("error", map[string]interface{}{"message": "invalid message payload", "status": http.StatusBadRequest})
				return
			}
		}
		outcome, err = h.chatSvc.StreamMessage(ctx, p.sessionID, payload.Text, func(delta string) {
			p.send("delta", map[string]string{"content": delta})
		})
	case "proof":
		outcome, err = h.chatSvc.SubmitProof(ctx, p.sessionID)
	case "clear":
		outcome, err = h.chatSvc.ClearSession(ctx, p.sessionID)
	default:
		p.send("error", map[string]interface{}{"message": "unsupported message type: " + msg.Type, "status": http.StatusBadRequest})
		return
	}

	if errors.Is(err, chatService.ErrDiscarded) {
		log.Printf("[websocket] session=%s reply discarded", p.sessionID)
		return
	}
	if err != nil {
		p.sendError(err)
		return
	}

	if msg.Type == "clear" {
		p.send("cleared", nil)
	}
	for _, turn := range outcome.Turns {
		p.send("turn", turn)
	}
	p.send("state", map[string]interface{}{
		"state":          outcome.State,
		"affordance":     outcome.Affordance,
		"proposal":       outcome.Proposal,
		"paymentAccount": outcome.PaymentAccount,
	})
}

func pingLoop(ctx context.Context, p *peer) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.ping(); err != nil {
				return
			}
		}
	}
}
