package chat

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/curugbadak/pasar-desa/backend/internal/model/catalog"
	"github.com/curugbadak/pasar-desa/backend/internal/model/chat"
	chatService "github.com/curugbadak/pasar-desa/backend/internal/service/chat"
	"github.com/curugbadak/pasar-desa/backend/pkg/utils"
)

// Handler exposes chat sessions over HTTP.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates a chat handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(sr chi.Router) {
		sr.Get("/", h.handleGetSession)
		sr.Delete("/", h.handleCloseSession)
		sr.Get("/transcript", h.handleTranscript)
		sr.Post("/messages", h.handleSendMessage)
		sr.Post("/proof", h.handleSubmitProof)
		sr.Delete("/history", h.handleClearHistory)
		sr.Get("/ws", h.handleWebSocket)
	})
}

type createSessionResponse struct {
	Session chat.Session `json:"session"`
	Turns   []chat.Turn  `json:"turns"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PersonaID string `json:"personaId"`
		StoreID   string `json:"storeId"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.chatSvc.CreateSession(r.Context(), payload.PersonaID, payload.StoreID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	turns, err := h.chatSvc.LoadTranscript(r.Context(), session.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, createSessionResponse{Session: session, Turns: turns})
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	turns, err := h.chatSvc.LoadTranscript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, turns)
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := h.chatSvc.SendMessage(r.Context(), chi.URLParam(r, "sessionID"), payload.Text)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, outcome)
}

func (h *Handler) handleSubmitProof(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.chatSvc.SubmitProof(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, outcome)
}

func (h *Handler) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.chatSvc.ClearSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, outcome)
}

func (h *Handler) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.CloseSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StatusFor maps chat service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, chatService.ErrEmptyInput),
		errors.Is(err, chatService.ErrPersonaRequired),
		errors.Is(err, chatService.ErrPersonaNotFound),
		errors.Is(err, chatService.ErrStoreRequired):
		return http.StatusBadRequest
	case errors.Is(err, chatService.ErrSessionNotFound),
		errors.Is(err, catalog.ErrStoreNotFound):
		return http.StatusNotFound
	case errors.Is(err, chatService.ErrBusy),
		errors.Is(err, chatService.ErrDiscarded):
		return http.StatusConflict
	case errors.Is(err, chatService.ErrSessionClosed):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[chat] request failed: %v", err)
		utils.RespondError(w, status, "internal error")
		return
	}
	utils.RespondError(w, status, err.Error())
}
