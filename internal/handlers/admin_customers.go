package handlers

import (
	"errors"
	"net/http"

	"github.com/BigSlendr/BBE-Menu/internal/services"
	"github.com/BigSlendr/BBE-Menu/internal/store"
	"github.com/BigSlendr/BBE-Menu/types"
	"github.com/go-chi/chi/v5"
)

// AdminCustomerHandler serves the console's customer management API.
type AdminCustomerHandler struct {
	customers *services.CustomerService
}

func NewAdminCustomerHandler(customers *services.CustomerService) *AdminCustomerHandler {
	return &AdminCustomerHandler{customers: customers}
}

// AdminCustomerRouter registers customer-management routes. The caller
// mounts it behind RequireAdmin.
func AdminCustomerRouter(r chi.Router, customers *services.CustomerService) {
	handler := NewAdminCustomerHandler(customers)

	r.Get("/", handler.Search)
	r.Get("/pending", handler.PendingReview)
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", handler.Detail)
		r.Put("/", handler.UpdateProfile)
		r.Delete("/", handler.Erase)
		r.Post("/points", handler.AdjustPoints)
		r.Post("/tier", handler.SetTier)
		r.Post("/status", handler.SetStatus)
		r.Get("/tags", handler.ListTags)
		r.Post("/tags", handler.AddTag)
		r.Delete("/tags/{tag}", handler.RemoveTag)
		r.Post("/deactivate", handler.Deactivate)
		r.Post("/reactivate", handler.Reactivate)
	})
}

func (h *AdminCustomerHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.CustomerFilter{
		Query:  query.Get("q"),
		Status: query.Get("status"),
		Tier:   query.Get("tier"),
		Tag:    query.Get("tag"),
		Limit:  parseLimit(r),
	}
	switch query.Get("active") {
	case "1", "true":
		active := true
		filter.Active = &active
	case "0", "false":
		active := false
		filter.Active = &active
	}

	users, err := h.customers.Search(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search customers")
		return
	}
	if users == nil {
		users = []types.User{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "customers": users})
}

func (h *AdminCustomerHandler) Detail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.customers.Detail(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load customer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "customer": detail})
}

func (h *AdminCustomerHandler) PendingReview(w http.ResponseWriter, r *http.Request) {
	users, err := h.customers.PendingReview(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list pending accounts")
		return
	}
	if users == nil {
		users = []types.User{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "customers": users})
}

func (h *AdminCustomerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.customers.UpdateProfile(r.Context(), chi.URLParam(r, "userID"), req.FirstName, req.LastName, req.Phone)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update customer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "customer": user})
}

func (h *AdminCustomerHandler) AdjustPoints(w http.ResponseWriter, r *http.Request) {
	var req AdjustPointsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	balance, err := h.customers.AdjustPoints(r.Context(), chi.URLParam(r, "userID"), req.Delta, req.Reason, adminID(r))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "points_balance": balance})
}

func (h *AdminCustomerHandler) SetTier(w http.ResponseWriter, r *http.Request) {
	var req SetTierRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.customers.SetTier(r.Context(), chi.URLParam(r, "userID"), req.Tier, req.Reason, adminID(r))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "tier": user.EffectiveTier()})
}

func (h *AdminCustomerHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req SetStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.customers.SetAccountStatus(r.Context(), chi.URLParam(r, "userID"), req.Status, adminID(r), req.Reason)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AdminCustomerHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.customers.Tags(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tags")
		return
	}
	if tags == nil {
		tags = []types.CustomerTag{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "tags": tags})
}

func (h *AdminCustomerHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.customers.AddTag(r.Context(), chi.URLParam(r, "userID"), req.Tag, adminID(r))
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "tag already attached")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to add tag")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AdminCustomerHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	err := h.customers.RemoveTag(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "tag"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tag not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to remove tag")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AdminCustomerHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	var req ReasonRequest
	_ = decodeJSON(r, &req)

	err := h.customers.Deactivate(r.Context(), chi.URLParam(r, "userID"), req.Reason)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to deactivate customer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AdminCustomerHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	err := h.customers.Reactivate(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to reactivate customer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AdminCustomerHandler) Erase(w http.ResponseWriter, r *http.Request) {
	var req EraseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.customers.Erase(r.Context(), chi.URLParam(r, "userID"), req.ConfirmEmail, req.AnonymizeOrders)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// adminID identifies the acting admin for audit fields. The console uses
// a shared secret, so this is an optional display name header.
func adminID(r *http.Request) *string {
	name := r.Header.Get("X-Admin-Name")
	if name == "" {
		return nil
	}
	return &name
}

// AdjustPointsRequest is the expected body for POST /customers/{id}/points.
type AdjustPointsRequest struct {
	Delta  int64  `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required,max=200"`
}

// SetTierRequest is the expected body for POST /customers/{id}/tier.
// An empty tier clears the override.
type SetTierRequest struct {
	Tier   string  `json:"tier" validate:"omitempty,oneof=member insider elite reserve"`
	Reason *string `json:"reason" validate:"omitempty,max=200"`
}

// SetStatusRequest is the expected body for POST /customers/{id}/status.
type SetStatusRequest struct {
	Status string  `json:"status" validate:"required,oneof=pending approved denied"`
	Reason *string `json:"reason" validate:"omitempty,max=200"`
}

// TagRequest is the expected body for POST /customers/{id}/tags.
type TagRequest struct {
	Tag string `json:"tag" validate:"required,max=40"`
}

// ReasonRequest is an optional reason payload.
type ReasonRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=200"`
}

// EraseRequest is the expected body for DELETE /customers/{id}. The
// admin must retype the account email; anonymizeOrders additionally
// strips the contact snapshot from historical orders.
type EraseRequest struct {
	ConfirmEmail    string `json:"confirmEmail" validate:"required,email"`
	AnonymizeOrders bool   `json:"anonymizeOrders"`
}
