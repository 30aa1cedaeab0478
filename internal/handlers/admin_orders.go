package handlers

import (
	"errors"
	"net/http"

	"github.com/BigSlendr/BBE-Menu/internal/services"
	"github.com/BigSlendr/BBE-Menu/internal/store"
	"github.com/BigSlendr/BBE-Menu/types"
	"github.com/go-chi/chi/v5"
)

// AdminOrderHandler serves the console's order management API.
type AdminOrderHandler struct {
	orders *services.OrderService
}

func NewAdminOrderHandler(orders *services.OrderService) *AdminOrderHandler {
	return &AdminOrderHandler{orders: orders}
}

// AdminOrderRouter registers order-management routes. The caller mounts
// it behind RequireAdmin.
func AdminOrderRouter(r chi.Router, orders *services.OrderService) {
	handler := NewAdminOrderHandler(orders)

	r.Get("/", handler.Search)
	r.Route("/{orderID}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.Post("/status", handler.SetStatus)
	})
}

func (h *AdminOrderHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	orders, err := h.orders.Search(r.Context(), store.OrderFilter{
		Query:    query.Get("q"),
		Status:   query.Get("status"),
		DateFrom: query.Get("from"),
		DateTo:   query.Get("to"),
		Limit:    parseLimit(r),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search orders")
		return
	}
	if orders == nil {
		orders = []types.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "orders": orders})
}

func (h *AdminOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch order")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "order": order})
}

func (h *AdminOrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req OrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.orders.SetStatus(r.Context(), chi.URLParam(r, "orderID"), req.Status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, OrderStatusResponse{
		OK:            true,
		Status:        req.Status,
		PointsAwarded: result.PointsAwarded,
		AwardSkipped:  result.AwardSkipped,
	})
}

// OrderStatusRequest is the expected body for POST /orders/{id}/status.
type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=placed pending completed cancelled"`
}

// OrderStatusResponse reports the transition and the award outcome.
type OrderStatusResponse struct {
	OK            bool   `json:"ok"`
	Status        string `json:"status"`
	PointsAwarded int64  `json:"points_awarded"`
	AwardSkipped  bool   `json:"award_skipped"`
}
