package stream

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatHandler "github.com/curugbadak/pasar-desa/backend/internal/handler/chat"
	"github.com/curugbadak/pasar-desa/backend/internal/model/chat"
	chatService "github.com/curugbadak/pasar-desa/backend/internal/service/chat"
	"github.com/curugbadak/pasar-desa/backend/pkg/utils"
)

// Handler relays assistant replies over Server-Sent Events.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates a stream handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// StreamResponse is one SSE chunk.
type StreamResponse struct {
	Event          string              `json:"event"`
	Content        string              `json:"content,omitempty"`
	SessionID      string              `json:"sessionId,omitempty"`
	Turn           *chat.Turn          `json:"turn,omitempty"`
	State          chat.State          `json:"state,omitempty"`
	Affordance     chat.Affordance     `json:"affordance,omitempty"`
	Proposal       *chat.OrderProposal `json:"proposal,omitempty"`
	PaymentAccount string              `json:"paymentAccount,omitempty"`
	Finished       bool                `json:"finished,omitempty"`
	Status         int                 `json:"status,omitempty"`
	Error          string              `json:"error,omitempty"`
}

// RegisterRoutes mounts the streaming route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	message := r.URL.Query().Get("message")

	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}
	if _, err := h.chatSvc.GetSession(r.Context(), sessionID); err != nil {
		utils.RespondError(w, chatHandler.StatusFor(err), err.Error())
		return
	}

	if err := h.HandleStreamRequest(r.Context(), w, sessionID, message); err != nil {
		log.Printf("[stream] session=%s request failed: %v", sessionID, err)
	}
}

// HandleStreamRequest sends one message and streams the reply. Deltas are a
// preview; the turn events carry the authoritative text.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, message string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	utils.SendSSEData(w, flusher, StreamResponse{Event: "start", SessionID: sessionID})

	outcome, err := h.chatSvc.StreamMessage(ctx, sessionID, message, func(delta string) {
		utils.SendSSEData(w, flusher, StreamResponse{Event: "delta", SessionID: sessionID, Content: delta})
	})
	if err != nil {
		utils.SendSSEData(w, flusher, StreamResponse{
			Event:     "error",
			SessionID: sessionID,
			Status:    chatHandler.StatusFor(err),
			Error:     err.Error(),
			Finished:  true,
		})
		return err
	}

	for i := range outcome.Turns {
		utils.SendSSEData(w, flusher, StreamResponse{Event: "turn", SessionID: sessionID, Turn: &outcome.Turns[i]})
	}
	utils.SendSSEData(w, flusher, StreamResponse{
		Event:          "state",
		SessionID:      sessionID,
		State:          outcome.State,
		Affordance:     outcome.Affordance,
		Proposal:       outcome.Proposal,
		PaymentAccount: outcome.PaymentAccount,
	})
	utils.SendSSEData(w, flusher, StreamResponse{Event: "end", SessionID: sessionID, Finished: true})
	return nil
}
