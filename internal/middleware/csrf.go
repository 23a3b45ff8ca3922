package middleware

import (
	"context"
	"net/http"

	"ticketlive/internal/session"
)

// CSRFMiddleware provides CSRF protection for state-changing requests.
type CSRFMiddleware struct {
	store *session.Store
}

// NewCSRFMiddleware creates a new CSRF middleware.
func NewCSRFMiddleware(store *session.Store) *CSRFMiddleware {
	return &CSRFMiddleware{store: store}
}

// CSRFProtection rejects non-safe requests whose token doesn't match the
// session's.
func (m *CSRFMiddleware) CSRFProtection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "GET" || r.Method == "HEAD" || r.Method == "OPTIONS" {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := m.store.Get(r)
		if err != nil {
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}

		sessionToken, ok := sess.Values[session.KeyCSRFToken].(string)
		if !ok || sessionToken == "" {
			http.Error(w, "CSRF token not found in session", http.StatusForbidden)
			return
		}

		requestToken := r.Header.Get("X-CSRF-Token")
		if requestToken == "" {
			requestToken = r.FormValue("csrf_token")
		}

		if requestToken != sessionToken {
			if IsHTMXRequest(r) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`<div class="alert alert-error">Security token mismatch. Please refresh the page and try again.</div>`))
				return
			}
			http.Error(w, "CSRF token mismatch", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// EnsureCSRFToken guarantees a token exists in the session and exposes
// it to templates via the request context.
func (m *CSRFMiddleware) EnsureCSRFToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.store.Get(r)
		if err == nil {
			token, ok := sess.Values[session.KeyCSRFToken].(string)
			if !ok || token == "" {
				token = GenerateCSRFToken()
				// The downstream handler's session save persists the
				// minted token; saving here too would set the session
				// cookie twice on the same response.
				sess.Values[session.KeyCSRFToken] = token
			}

			ctx := context.WithValue(r.Context(), contextKey("csrf_token"), token)
			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r)
	})
}

// CSRFTokenFromContext returns the token EnsureCSRFToken stored.
func CSRFTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(contextKey("csrf_token")).(string)
	return token
}
