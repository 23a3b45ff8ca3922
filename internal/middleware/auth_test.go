package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketlive/internal/backend"
	"ticketlive/internal/models"
	"ticketlive/internal/session"
)

func signedToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()
	claims := backendClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestTokenExpired(t *testing.T) {
	client := backend.NewClient(backend.Config{BaseURL: "http://localhost"})
	store := session.NewStore("test-secret")

	t.Run("with shared secret", func(t *testing.T) {
		m := NewAuthMiddleware(client, store, "jwt-secret")

		assert.False(t, m.tokenExpired(signedToken(t, "jwt-secret", time.Now().Add(time.Hour))))
		assert.True(t, m.tokenExpired(signedToken(t, "jwt-secret", time.Now().Add(-time.Hour))))
		// Wrong signature is treated as expired.
		assert.True(t, m.tokenExpired(signedToken(t, "other-secret", time.Now().Add(time.Hour))))
		assert.True(t, m.tokenExpired("garbage"))
	})

	t.Run("without shared secret", func(t *testing.T) {
		m := NewAuthMiddleware(client, store, "")

		// Timestamps are trusted without signature verification.
		assert.False(t, m.tokenExpired(signedToken(t, "whatever", time.Now().Add(time.Hour))))
		assert.True(t, m.tokenExpired(signedToken(t, "whatever", time.Now().Add(-time.Hour))))
		assert.True(t, m.tokenExpired("garbage"))
	})
}

func protectedHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	client := backend.NewClient(backend.Config{BaseURL: "http://localhost"})
	store := session.NewStore("test-secret")
	m := NewAuthMiddleware(client, store, "")

	t.Run("anonymous visitor redirected to login", func(t *testing.T) {
		called := false
		req := httptest.NewRequest("GET", "/orders", nil)
		rec := httptest.NewRecorder()

		m.RequireAuth(protectedHandler(&called)).ServeHTTP(rec, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login?redirect=/orders", rec.Header().Get("Location"))
	})

	t.Run("htmx request gets HX-Redirect", func(t *testing.T) {
		called := false
		req := httptest.NewRequest("POST", "/orders", nil)
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()

		m.RequireAuth(protectedHandler(&called)).ServeHTTP(rec, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("HX-Redirect"))
	})

	t.Run("signed-in visitor passes", func(t *testing.T) {
		called := false
		req := httptest.NewRequest("GET", "/orders", nil)
		req = req.WithContext(SetUserContext(req.Context(), &models.User{ID: 1}))
		rec := httptest.NewRecorder()

		m.RequireAuth(protectedHandler(&called)).ServeHTTP(rec, req)

		assert.True(t, called)
	})
}

func TestRequireAdmin(t *testing.T) {
	client := backend.NewClient(backend.Config{BaseURL: "http://localhost"})
	store := session.NewStore("test-secret")
	m := NewAuthMiddleware(client, store, "")

	t.Run("regular user sent home", func(t *testing.T) {
		called := false
		req := httptest.NewRequest("GET", "/admin", nil)
		req = req.WithContext(SetUserContext(req.Context(), &models.User{ID: 1}))
		rec := httptest.NewRecorder()

		m.RequireAdmin(protectedHandler(&called)).ServeHTTP(rec, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("admin passes", func(t *testing.T) {
		called := false
		req := httptest.NewRequest("GET", "/admin", nil)
		req = req.WithContext(SetUserContext(req.Context(), &models.User{ID: 1, IsAdmin: true}))
		rec := httptest.NewRecorder()

		m.RequireAdmin(protectedHandler(&called)).ServeHTTP(rec, req)

		assert.True(t, called)
	})

	t.Run("anonymous sent to login", func(t *testing.T) {
		called := false
		req := httptest.NewRequest("GET", "/admin", nil)
		rec := httptest.NewRecorder()

		m.RequireAdmin(protectedHandler(&called)).ServeHTTP(rec, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
	})
}
