package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/BigSlendr/BBE-Menu/internal/services"
)

// RequireSession resolves the session cookie to a user and stores both
// on the request context. Requests without a valid session get 401.
func RequireSession(auth *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			user, err := auth.UserFromSession(r.Context(), cookie.Value)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			ctx := context.WithValue(r.Context(), contextUserKey, user)
			ctx = context.WithValue(ctx, contextSessionKey, cookie.Value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireApproved gates order placement on a completed ID review. Must
// run inside RequireSession.
func RequireApproved(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if user.AccountStatus != "approved" {
			writeError(w, http.StatusForbidden, "account not verified")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin gates the console API on the shared admin secret, taken
// from the X-Admin-Secret header or the unlock cookie. Comparison is
// constant-time.
func RequireAdmin(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" || !adminAuthorized(r, secret) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func adminAuthorized(r *http.Request, secret string) bool {
	provided := r.Header.Get("X-Admin-Secret")
	if provided == "" {
		if cookie, err := r.Cookie(AdminCookieName); err == nil {
			provided = cookie.Value
		}
	}
	if provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) == 1
}
