package handlers

import (
	"net/http"

	"github.com/BigSlendr/BBE-Menu/internal/services"
	"github.com/BigSlendr/BBE-Menu/types"
	"github.com/go-chi/chi/v5"
)

// AccountHandler serves the signed-in customer's own account views.
type AccountHandler struct {
	auth   *services.AuthService
	orders *services.OrderService
}

func NewAccountHandler(auth *services.AuthService, orders *services.OrderService) *AccountHandler {
	return &AccountHandler{auth: auth, orders: orders}
}

// AccountRouter registers account routes. The caller mounts it behind
// RequireSession.
func AccountRouter(r chi.Router, auth *services.AuthService, orders *services.OrderService) {
	handler := NewAccountHandler(auth, orders)

	r.Get("/me", handler.Profile)
	r.Patch("/me", handler.UpdateProfile)
	r.Get("/account/summary", handler.Summary)
	r.Get("/orders/me", handler.MyOrders)
}

func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "user": publicUser(user)})
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.auth.UpdateProfile(r.Context(), user.ID, req.FirstName, req.LastName, req.Phone)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "user": publicUser(updated)})
}

func (h *AccountHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ledger, err := h.orders.LedgerForUser(r.Context(), user.ID, 25)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load summary")
		return
	}
	orders, err := h.orders.ListForUser(r.Context(), user.ID, 25)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load summary")
		return
	}

	writeJSON(w, http.StatusOK, AccountSummaryResponse{
		OK:                 true,
		PointsBalance:      user.PointsBalance,
		LifetimeSpendCents: user.LifetimeSpendCents,
		Tier:               user.EffectiveTier(),
		Ledger:             ledger,
		Orders:             orders,
	})
}

func (h *AccountHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit := parseLimit(r)
	if limit == 0 {
		limit = 20
	}
	orders, err := h.orders.ListForUser(r.Context(), user.ID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	if orders == nil {
		orders = []types.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "orders": orders})
}

// UpdateProfileRequest is the expected body for PATCH /me. Absent fields
// are left untouched.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=80"`
	LastName  *string `json:"last_name" validate:"omitempty,max=80"`
	Phone     *string `json:"phone" validate:"omitempty,max=40"`
}

// AccountSummaryResponse is returned by GET /account/summary.
type AccountSummaryResponse struct {
	OK                 bool                `json:"ok"`
	PointsBalance      int64               `json:"points_balance"`
	LifetimeSpendCents int64               `json:"lifetime_spend_cents"`
	Tier               string              `json:"tier"`
	Ledger             []types.LedgerEntry `json:"ledger"`
	Orders             []types.Order       `json:"orders"`
}
