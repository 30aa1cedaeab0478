package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/BigSlendr/BBE-Menu/internal/services"
	"github.com/BigSlendr/BBE-Menu/internal/store"
	"github.com/BigSlendr/BBE-Menu/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-resty/resty/v2"
)

// AdminProductHandler serves the console's catalog management API.
type AdminProductHandler struct {
	catalog    *services.CatalogService
	content    *resty.Client
	contentURL string
}

// NewAdminProductHandler constructs the handler. siteURL is the
// storefront origin hosting /content/products.json.
func NewAdminProductHandler(catalog *services.CatalogService, siteURL string) *AdminProductHandler {
	return &AdminProductHandler{
		catalog:    catalog,
		content:    resty.New().SetTimeout(15 * time.Second),
		contentURL: strings.TrimRight(siteURL, "/") + "/content/products.json",
	}
}

// AdminProductRouter registers catalog-management routes. The caller
// mounts it behind RequireAdmin.
func AdminProductRouter(r chi.Router, catalog *services.CatalogService, siteURL string) {
	handler := NewAdminProductHandler(catalog, siteURL)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", handler.List)
		r.Post("/", handler.Create)
		r.Post("/import-content", handler.ImportContent)
		r.Route("/{productID}", func(r chi.Router) {
			r.Get("/", handler.Get)
			r.Put("/", handler.Update)
			r.Post("/variants", handler.CreateVariant)
		})
	})
	r.Route("/variants/{variantID}", func(r chi.Router) {
		r.Put("/", handler.UpdateVariant)
		r.Delete("/", handler.RemoveVariant)
		r.Post("/inventory", handler.SetInventory)
	})
}

func (h *AdminProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.AdminFilter{
		Category: query.Get("category"),
		Brand:    query.Get("brand"),
		Query:    query.Get("q"),
		Limit:    parseLimit(r),
	}
	switch query.Get("published") {
	case "1", "true":
		published := true
		filter.Published = &published
	case "0", "false":
		published := false
		filter.Published = &published
	}

	products, err := h.catalog.AdminList(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	if products == nil {
		products = []types.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "products": products})
}

func (h *AdminProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Get(r.Context(), chi.URLParam(r, "productID"))
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

func (h *AdminProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), req.input())
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "slug already in use")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "product": product})
}

func (h *AdminProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), chi.URLParam(r, "productID"), req.input())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, store.ErrConflict):
			writeError(w, http.StatusConflict, "slug already in use")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update product")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "product": product})
}

func (h *AdminProductHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	var req VariantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	variant, err := h.catalog.CreateVariant(r.Context(), chi.URLParam(r, "productID"), req.input())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create variant")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "variant": variant})
}

func (h *AdminProductHandler) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	var req VariantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	variant, err := h.catalog.UpdateVariant(r.Context(), chi.URLParam(r, "variantID"), req.input())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "variant not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update variant")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "variant": variant})
}

func (h *AdminProductHandler) RemoveVariant(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.RemoveVariant(r.Context(), chi.URLParam(r, "variantID")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "variant not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to remove variant")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AdminProductHandler) SetInventory(w http.ResponseWriter, r *http.Request) {
	var req InventoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = "set"
	}
	variant, err := h.catalog.SetInventory(r.Context(), chi.URLParam(r, "variantID"), mode, req.Qty, req.Reason, adminID(r))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "variant not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "variant": variant})
}

// ImportContent upserts the catalog from the static content file.
// Items may be posted inline; otherwise they are fetched from the
// storefront's /content/products.json.
func (h *AdminProductHandler) ImportContent(w http.ResponseWriter, r *http.Request) {
	var req ImportContentRequest
	_ = decodeJSON(r, &req)

	items := req.Items
	if len(items) == 0 {
		var payload struct {
			Items []services.ContentProduct `json:"items"`
		}
		resp, err := h.content.R().
			SetContext(r.Context()).
			SetHeader("Accept", "application/json").
			SetResult(&payload).
			Get(h.contentURL)
		if err != nil || resp.IsError() {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read content catalog from %s", h.contentURL))
			return
		}
		items = payload.Items
	}

	summary := h.catalog.ImportContent(r.Context(), items)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "summary": summary})
}

// ProductRequest is the expected body for product create/update.
type ProductRequest struct {
	Slug        string   `json:"slug" validate:"max=120"`
	Name        string   `json:"name" validate:"required,max=160"`
	Brand       string   `json:"brand" validate:"required,max=120"`
	Category    string   `json:"category" validate:"required,max=80"`
	Subcategory *string  `json:"subcategory" validate:"omitempty,max=80"`
	Description *string  `json:"description" validate:"omitempty,max=4000"`
	Effects     []string `json:"effects" validate:"max=20,dive,max=40"`
	ImagePath   *string  `json:"image_path" validate:"omitempty,max=300"`
	IsPublished bool     `json:"is_published"`
	IsFeatured  bool     `json:"is_featured"`
}

func (req ProductRequest) input() services.ProductInput {
	return services.ProductInput{
		Slug:        req.Slug,
		Name:        req.Name,
		Brand:       req.Brand,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Description: req.Description,
		Effects:     req.Effects,
		ImagePath:   req.ImagePath,
		IsPublished: req.IsPublished,
		IsFeatured:  req.IsFeatured,
	}
}

// VariantRequest is the expected body for variant create/update.
// is_active defaults to active when omitted; inventory_qty only applies
// on create, the inventory endpoint owns it afterwards.
type VariantRequest struct {
	Label             string `json:"label" validate:"required,max=40"`
	PriceCents        int64  `json:"price_cents" validate:"gte=0"`
	InventoryQty      int64  `json:"inventory_qty" validate:"gte=0"`
	LowStockThreshold *int64 `json:"low_stock_threshold" validate:"omitempty,gte=0"`
	IsActive          *bool  `json:"is_active"`
	SortOrder         int    `json:"sort_order" validate:"gte=0"`
}

func (req VariantRequest) input() services.VariantInput {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return services.VariantInput{
		Label:             req.Label,
		PriceCents:        req.PriceCents,
		InventoryQty:      req.InventoryQty,
		LowStockThreshold: req.LowStockThreshold,
		IsActive:          active,
		SortOrder:         req.SortOrder,
	}
}

// InventoryRequest is the expected body for POST /variants/{id}/inventory.
// Mode "set" writes an absolute count; "adjust" applies a signed delta,
// clamped at zero.
type InventoryRequest struct {
	Mode   string  `json:"mode" validate:"omitempty,oneof=set adjust"`
	Qty    int64   `json:"qty"`
	Reason *string `json:"reason" validate:"omitempty,max=200"`
}

// ImportContentRequest optionally inlines the content catalog.
type ImportContentRequest struct {
	Items []services.ContentProduct `json:"items"`
}
