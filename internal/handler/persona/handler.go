package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/curugbadak/pasar-desa/backend/internal/model/persona"
	"github.com/curugbadak/pasar-desa/backend/pkg/utils"
)

// Handler lists the chat assistants.
type Handler struct {
	personas persona.Store
}

// New creates a persona handler.
func New(personas persona.Store) *Handler {
	return &Handler{
		personas: personas,
	}
}

// RegisterRoutes mounts the persona routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
	r.Get("/personas/{personaID}", h.handleGetPersona)
}

// handleListPersonas lists every assistant, or one kind with ?kind=store.
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	kind := persona.Kind(r.URL.Query().Get("kind"))
	switch kind {
	case "":
		utils.RespondJSON(w, http.StatusOK, h.personas.List())
	case persona.KindStore, persona.KindHelpdesk:
		utils.RespondJSON(w, http.StatusOK, h.personas.ListByKind(kind))
	default:
		utils.RespondError(w, http.StatusBadRequest, "unknown persona kind")
	}
}

func (h *Handler) handleGetPersona(w http.ResponseWriter, r *http.Request) {
	p, ok := h.personas.FindByID(chi.URLParam(r, "personaID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "persona not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}
