package handlers

import (
	"errors"
	"net/http"

	"github.com/BigSlendr/BBE-Menu/internal/services"
	"github.com/BigSlendr/BBE-Menu/internal/store"
	"github.com/BigSlendr/BBE-Menu/types"
	"github.com/go-chi/chi/v5"
)

// CatalogHandler serves the public product listing and detail pages.
type CatalogHandler struct {
	catalog *services.CatalogService
}

func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// CatalogRouter registers storefront catalog routes.
func CatalogRouter(r chi.Router, catalog *services.CatalogService) {
	handler := NewCatalogHandler(catalog)

	r.Get("/", handler.List)
	r.Get("/{slug}", handler.GetBySlug)
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	products, err := h.catalog.PublicList(r.Context(), store.PublicFilter{
		Category:    query.Get("category"),
		Subcategory: query.Get("subcategory"),
		Brand:       query.Get("brand"),
		Query:       query.Get("q"),
		Featured:    query.Get("featured") == "1" || query.Get("featured") == "true",
		Limit:       parseLimit(r),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	if products == nil {
		products = []types.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "products": products})
}

func (h *CatalogHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	product, err := h.catalog.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "product": product})
}
