package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	catalogHandler "github.com/curugbadak/pasar-desa/backend/internal/handler/catalog"
	"github.com/curugbadak/pasar-desa/backend/internal/handler/chat"
	"github.com/curugbadak/pasar-desa/backend/internal/handler/persona"
	"github.com/curugbadak/pasar-desa/backend/internal/handler/stream"
	middlewarePkg "github.com/curugbadak/pasar-desa/backend/internal/middleware"
	"github.com/curugbadak/pasar-desa/backend/internal/model/catalog"
	personaModel "github.com/curugbadak/pasar-desa/backend/internal/model/persona"
	chatService "github.com/curugbadak/pasar-desa/backend/internal/service/chat"
	"github.com/curugbadak/pasar-desa/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(allowedOrigins []string, personas personaModel.Store, provider catalog.Provider, chatSvc *chatService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(allowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		persona.New(personas).RegisterRoutes(api)
		catalogHandler.New(provider).RegisterRoutes(api)
		chat.New(chatSvc).RegisterRoutes(api)
		stream.New(chatSvc).RegisterRoutes(api)
	})

	return r
}
