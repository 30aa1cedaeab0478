package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func TestRequireSessionRejectsMissingAndBogusCookies(t *testing.T) {
	f := newAuthFixture()
	router := chi.NewRouter()
	router.With(RequireSession(f.auth)).Get("/protected", okHandler)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not-a-session"})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireApprovedGatesPendingAccounts(t *testing.T) {
	f := newAuthFixture()
	router := chi.NewRouter()
	router.With(RequireSession(f.auth), RequireApproved).Post("/orders", okHandler)

	signup := f.do(t, http.MethodPost, "/auth/signup", map[string]string{
		"email": "jo@bbe.test", "password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusCreated, signup.Code)
	cookie := sessionCookie(t, signup)

	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code, "pending accounts cannot order")

	// Approve the account and retry.
	for id, user := range f.users.byID {
		user.AccountStatus = "approved"
		f.users.byID[id] = user
	}
	req = httptest.NewRequest(http.MethodPost, "/orders", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSessionRejectsDeactivatedUser(t *testing.T) {
	f := newAuthFixture()
	router := chi.NewRouter()
	router.With(RequireSession(f.auth)).Get("/protected", okHandler)

	signup := f.do(t, http.MethodPost, "/auth/signup", map[string]string{
		"email": "jo@bbe.test", "password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusCreated, signup.Code)
	cookie := sessionCookie(t, signup)

	for id, user := range f.users.byID {
		user.IsActive = false
		f.users.byID[id] = user
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	router := chi.NewRouter()
	router.With(RequireAdmin("s3cret")).Get("/admin", okHandler)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-Admin-Secret", "wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-Admin-Secret", "s3cret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: AdminCookieName, Value: "s3cret"})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "unlock cookie works without the header")
}

func TestRequireAdminEmptySecretLocksEverythingOut(t *testing.T) {
	router := chi.NewRouter()
	router.With(RequireAdmin("")).Get("/admin", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-Admin-Secret", "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
