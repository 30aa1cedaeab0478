package handlers

import (
	"errors"
	"net/http"

	"github.com/BigSlendr/BBE-Menu/internal/services"
	"github.com/BigSlendr/BBE-Menu/internal/store"
	"github.com/BigSlendr/BBE-Menu/types"
	"github.com/go-chi/chi/v5"
)

// AuthHandler provides HTTP handlers for signup, sessions, and password
// recovery.
type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, auth *services.AuthService) {
	handler := NewAuthHandler(auth)

	r.Post("/signup", handler.Signup)
	r.Post("/signin", handler.Signin)
	r.Post("/logout", handler.Logout)
	r.Get("/me", handler.Me)
	r.Route("/password", func(r chi.Router) {
		r.Post("/forgot", handler.ForgotPassword)
		r.Post("/reset", handler.ResetPassword)
	})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, session, err := h.auth.Signup(r.Context(), services.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		DOB:       req.DOB,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	setSessionCookie(w, session)
	writeJSON(w, http.StatusCreated, SessionResponse{OK: true, User: publicUser(user)})
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, session, err := h.auth.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, services.ErrAccountDisabled):
			writeError(w, http.StatusForbidden, "account deactivated")
		default:
			writeError(w, http.StatusInternalServerError, "failed to sign in")
		}
		return
	}

	setSessionCookie(w, session)
	writeJSON(w, http.StatusOK, SessionResponse{OK: true, User: publicUser(user)})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.auth.Signout(r.Context(), cookie.Value); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to sign out")
			return
		}
	}
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me reports session state without requiring one, so the storefront can
// render signed-out pages from the same call.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		writeJSON(w, http.StatusOK, MeResponse{LoggedIn: false})
		return
	}
	user, err := h.auth.UserFromSession(r.Context(), cookie.Value)
	if err != nil {
		writeJSON(w, http.StatusOK, MeResponse{LoggedIn: false})
		return
	}
	profile := publicUser(user)
	writeJSON(w, http.StatusOK, MeResponse{
		LoggedIn:           true,
		User:               &profile,
		VerificationStatus: h.auth.VerificationStatus(r.Context(), user.ID),
	})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.auth.ForgotPassword(r.Context(), req.Email, clientIP(r), r.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrThrottled):
			writeError(w, http.StatusTooManyRequests, "too many reset requests, try again later")
		case errors.Is(err, services.ErrNotifySend):
			writeError(w, http.StatusBadGateway, "failed to send reset email")
		default:
			writeError(w, http.StatusInternalServerError, "failed to process request")
		}
		return
	}
	// Identical response whether or not the email has an account.
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			writeError(w, http.StatusBadRequest, "invalid or expired token")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// PublicUser is the account shape exposed to the storefront.
type PublicUser struct {
	ID                 string  `json:"id"`
	Email              string  `json:"email"`
	Phone              string  `json:"phone"`
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	AccountStatus      string  `json:"account_status"`
	StatusReason       *string `json:"status_reason,omitempty"`
	PointsBalance      int64   `json:"points_balance"`
	LifetimeSpendCents int64   `json:"lifetime_spend_cents"`
	Tier               string  `json:"tier"`
}

func publicUser(user types.User) PublicUser {
	return PublicUser{
		ID:                 user.ID,
		Email:              user.Email,
		Phone:              user.Phone,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		AccountStatus:      user.AccountStatus,
		StatusReason:       user.StatusReason,
		PointsBalance:      user.PointsBalance,
		LifetimeSpendCents: user.LifetimeSpendCents,
		Tier:               user.EffectiveTier(),
	}
}

// SignupRequest is the expected body for POST /auth/signup.
type SignupRequest struct {
	Email     string `json:"email" validate:"required,email,max=120"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	Phone     string `json:"phone" validate:"max=40"`
	FirstName string `json:"first_name" validate:"max=80"`
	LastName  string `json:"last_name" validate:"max=80"`
	DOB       string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
}

// SigninRequest is the expected body for POST /auth/signin.
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest is the expected body for POST /auth/password/forgot.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the expected body for POST /auth/password/reset.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=10,max=128"`
}

// SessionResponse is returned by signup and signin.
type SessionResponse struct {
	OK   bool       `json:"ok"`
	User PublicUser `json:"user"`
}

// MeResponse is returned by GET /auth/me.
type MeResponse struct {
	LoggedIn           bool        `json:"loggedIn"`
	User               *PublicUser `json:"user,omitempty"`
	VerificationStatus string      `json:"verificationStatus,omitempty"`
}
