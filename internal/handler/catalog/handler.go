package catalog

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/curugbadak/pasar-desa/backend/internal/model/catalog"
	"github.com/curugbadak/pasar-desa/backend/pkg/utils"
)

// Handler serves the read-only marketplace catalog.
type Handler struct {
	provider catalog.Provider
}

// New creates a catalog handler.
func New(provider catalog.Provider) *Handler {
	return &Handler{provider: provider}
}

// RegisterRoutes mounts the store and product routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stores", h.handleListStores)
	r.Get("/stores/{storeID}/products", h.handleListProducts)
}

func (h *Handler) handleListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.provider.Stores(r.Context())
	if err != nil {
		log.Printf("[catalog] failed to list stores: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to list stores")
		return
	}
	utils.RespondJSON(w, http.StatusOK, stores)
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")

	if _, err := h.provider.FindStore(r.Context(), storeID); err != nil {
		if errors.Is(err, catalog.ErrStoreNotFound) {
			utils.RespondError(w, http.StatusNotFound, "store not found")
			return
		}
		log.Printf("[catalog] store=%s lookup failed: %v", storeID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to load store")
		return
	}

	products, err := h.provider.Products(r.Context(), storeID)
	if err != nil {
		log.Printf("[catalog] store=%s failed to list products: %v", storeID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	visible := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if p.Visible() {
			visible = append(visible, p)
		}
	}
	utils.RespondJSON(w, http.StatusOK, visible)
}
