package handlers

import (
	"crypto/subtle"
	"errors"
	"io"
	"net/http"

	"github.com/BigSlendr/BBE-Menu/internal/services"
	"github.com/BigSlendr/BBE-Menu/internal/store"
	"github.com/BigSlendr/BBE-Menu/types"
	"github.com/go-chi/chi/v5"
)

// AdminHandler serves console unlock, the dashboard, and the ID review
// queue.
type AdminHandler struct {
	customers     *services.CustomerService
	verifications *services.VerificationService
	secret        string
}

func NewAdminHandler(customers *services.CustomerService, verifications *services.VerificationService, secret string) *AdminHandler {
	return &AdminHandler{
		customers:     customers,
		verifications: verifications,
		secret:        secret,
	}
}

// AdminRouter registers unlock plus the secret-gated console routes.
// Unlock itself stays outside RequireAdmin so the console can bootstrap.
func AdminRouter(r chi.Router, customers *services.CustomerService, verifications *services.VerificationService, secret string) {
	handler := NewAdminHandler(customers, verifications, secret)

	r.Get("/unlock", handler.UnlockStatus)
	r.Post("/unlock", handler.Unlock)

	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin(secret))
		r.Get("/dashboard", handler.Dashboard)
		r.Get("/verifications", handler.ListVerifications)
		r.Post("/verifications/{userID}/action", handler.VerificationAction)
		r.Get("/verifications/{userID}/file/{kind}", handler.VerificationFile)
	})
}

// UnlockStatus reports whether the request already carries valid admin
// credentials.
func (h *AdminHandler) UnlockStatus(w http.ResponseWriter, r *http.Request) {
	ok := h.secret != "" && adminAuthorized(r, h.secret)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}

// Unlock exchanges the shared secret for the console cookie.
func (h *AdminHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	var req UnlockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.secret == "" || subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.secret)) != 1 {
		writeError(w, http.StatusUnauthorized, "invalid")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     AdminCookieName,
		Value:    req.Secret,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.customers.Dashboard(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "metrics": metrics})
}

func (h *AdminHandler) ListVerifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.verifications.ListForReview(r.Context(), r.URL.Query().Get("status"), parseLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list verifications")
		return
	}
	if list == nil {
		list = []types.Verification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "verifications": list})
}

func (h *AdminHandler) VerificationAction(w http.ResponseWriter, r *http.Request) {
	var req VerificationActionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.verifications.Review(r.Context(), chi.URLParam(r, "userID"), req.Action, adminID(r), req.Reason)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "verification not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// VerificationFile streams a stored ID or selfie image to the reviewer.
func (h *AdminHandler) VerificationFile(w http.ResponseWriter, r *http.Request) {
	reader, contentType, err := h.verifications.OpenFile(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "kind"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to open file")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = io.Copy(w, reader)
}

// UnlockRequest is the expected body for POST /admin/unlock.
type UnlockRequest struct {
	Secret string `json:"secret" validate:"required"`
}

// VerificationActionRequest is the expected body for the review
// decision.
type VerificationActionRequest struct {
	Action string  `json:"action" validate:"required,oneof=approve deny reject pending"`
	Reason *string `json:"reason" validate:"omitempty,max=400"`
}
