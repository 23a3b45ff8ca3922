package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"ticketlive/internal/backend"
	"ticketlive/internal/middleware"
	"ticketlive/internal/models"
	"ticketlive/internal/render"
	"ticketlive/internal/services"
	"ticketlive/internal/session"
)

// fakeBackend stands in for the TicketLive backend REST service.
type fakeBackend struct {
	mu         sync.Mutex
	claimCalls int
	signOuts   int

	events       map[int]*models.Event
	user         models.User
	coupon       models.Coupon
	claimFailure string // backend error message; empty means claims succeed
	verifyStatus string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		events: map[int]*models.Event{
			1: {ID: 1, Title: "Rock Night", Price: 5000, Capacity: 200, Date: time.Now().Add(48 * time.Hour), Location: "Buenos Aires"},
			2: {ID: 2, Title: "Jazz Evening", Price: 4550, Capacity: 80, Date: time.Now().Add(72 * time.Hour), Location: "Córdoba"},
		},
		user:         models.User{ID: 1, Email: "ana@example.com", Name: "Ana"},
		coupon:       models.Coupon{ID: 9, Code: "SUMMER20", Type: models.CouponPercent, Value: 20, Active: true},
		verifyStatus: "approved",
	}
}

// sessionJWT builds a backend session token with a future expiry so the
// auth middleware accepts it.
func sessionJWT(t *testing.T) string {
	t.Helper()
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func (f *fakeBackend) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch {
		case r.Method == "GET" && strings.HasPrefix(r.URL.Path, "/events/"):
			var id int
			fmt.Sscanf(r.URL.Path, "/events/%d", &id)
			event, ok := f.events[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]string{"message": "event not found"})
				return
			}
			json.NewEncoder(w).Encode(event)

		case r.Method == "GET" && r.URL.Path == "/events":
			events := make([]*models.Event, 0, len(f.events))
			for _, event := range f.events {
				events = append(events, event)
			}
			json.NewEncoder(w).Encode(events)

		case r.Method == "GET" && r.URL.Path == "/categories":
			json.NewEncoder(w).Encode([]*models.Category{})

		case r.Method == "POST" && r.URL.Path == "/auth/signin":
			http.SetCookie(w, &http.Cookie{Name: "token", Value: sessionJWT(t)})
			json.NewEncoder(w).Encode(f.user)

		case r.Method == "POST" && r.URL.Path == "/auth/signout":
			f.signOuts++
			w.WriteHeader(http.StatusOK)

		case r.Method == "GET" && r.URL.Path == "/users/me":
			json.NewEncoder(w).Encode(f.user)

		case r.Method == "GET" && r.URL.Path == "/carts/active":
			json.NewEncoder(w).Encode(map[string]string{"id": "cart-1"})

		case r.Method == "POST" && r.URL.Path == "/coupons/claim":
			f.claimCalls++
			if f.claimFailure != "" {
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(map[string]string{"message": f.claimFailure})
				return
			}
			json.NewEncoder(w).Encode(f.coupon)

		case r.Method == "POST" && r.URL.Path == "/coupons/confirm":
			w.WriteHeader(http.StatusOK)

		case r.Method == "POST" && r.URL.Path == "/payments/mercadopago/preference":
			json.NewEncoder(w).Encode(backend.PaymentPreference{ID: "pref-1", InitPoint: "https://pay.example.com/checkout"})

		case r.Method == "POST" && r.URL.Path == "/payments/mercadopago/verify":
			json.NewEncoder(w).Encode(backend.PaymentVerification{Status: f.verifyStatus, PaymentID: "pay-1"})

		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "not found"})
		}
	}
}

func (f *fakeBackend) claimCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.claimCalls
}

// fixture wires the handlers against a fake backend with a cookie-
// carrying test client. CSRF protection is covered by its own
// middleware tests and left out of this router.
type fixture struct {
	t       *testing.T
	backend *fakeBackend
	router  chi.Router
	cookies map[string]*http.Cookie
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	fake := newFakeBackend()
	backendServer := httptest.NewServer(fake.handler(t))
	t.Cleanup(backendServer.Close)

	mailServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(mailServer.Close)

	renderer, err := render.New()
	require.NoError(t, err)

	store := session.NewStore("test-secret")
	client := backend.NewClient(backend.Config{BaseURL: backendServer.URL, Timeout: 5 * time.Second, SessionCookie: "token"})
	couponService := services.NewCouponService(client)
	mailService := services.NewMailService(services.ResendConfig{APIKey: "k", FromEmail: "noreply@test", BaseURL: mailServer.URL})
	commentStore := services.NewCommentStore(t.TempDir())
	subscriberStore := services.NewSubscriberStore(t.TempDir())
	orderStore := services.NewOrderStore(t.TempDir())
	geocodeService := services.NewGeocodeService(services.GeocoderConfig{BaseURL: mailServer.URL})
	chatService := services.NewChatService(services.ChatConfig{APIKey: "k", BaseURL: mailServer.URL})
	assetService := services.NewAssetService(services.NewFallbackStorageService(t.TempDir(), "http://localhost/uploads"))

	authMiddleware := middleware.NewAuthMiddleware(client, store, "")

	publicHandler := NewPublicHandler(store, renderer, client, commentStore, geocodeService)
	cartHandler := NewCartHandler(store, renderer, client, couponService)
	checkoutHandler := NewCheckoutHandler(store, renderer, client, couponService, orderStore)
	ordersHandler := NewOrdersHandler(store, renderer, orderStore)
	favoritesHandler := NewFavoritesHandler(store, renderer, client)
	authHandler := NewAuthHandler(store, renderer, client)
	adminHandler := NewAdminHandler(store, renderer, client, subscriberStore, mailService, assetService)
	apiHandler := NewAPIHandler(store, renderer, subscriberStore, commentStore, mailService, chatService, geocodeService)

	r := chi.NewRouter()
	r.Use(authMiddleware.LoadUser)

	r.Get("/", publicHandler.Home)
	r.Get("/cart", cartHandler.View)
	r.Post("/cart/add/{id}", cartHandler.Add)
	r.Post("/cart/increase/{id}", cartHandler.Increase)
	r.Post("/cart/decrease/{id}", cartHandler.Decrease)
	r.Post("/cart/remove/{id}", cartHandler.Remove)
	r.Post("/cart/clear", cartHandler.Clear)
	r.Post("/cart/coupon", cartHandler.ApplyCoupon)
	r.Post("/cart/coupon/remove", cartHandler.RemoveCoupon)
	r.Post("/favorites/toggle/{id}", favoritesHandler.Toggle)
	r.Get("/favorites", favoritesHandler.List)
	r.Post("/login", authHandler.Login)
	r.Post("/logout", authHandler.Logout)
	r.Get("/orders", ordersHandler.List)
	r.Post("/checkout", checkoutHandler.Submit)
	r.Get("/checkout/success", checkoutHandler.Success)
	r.Get("/checkout/failure", checkoutHandler.Failure)
	r.Route("/admin", func(r chi.Router) {
		r.Use(authMiddleware.RequireAdmin)
		r.Get("/", adminHandler.Dashboard)
	})
	r.Post("/api/subscribe", apiHandler.Subscribe)
	r.Get("/api/comments", apiHandler.ListComments)
	r.Post("/api/comments", apiHandler.CreateComment)

	return &fixture{
		t:       t,
		backend: fake,
		router:  r,
		cookies: map[string]*http.Cookie{},
	}
}

// do issues a request through the router, carrying the session cookie
// across calls like a browser would.
func (f *fixture) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	f.t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, cookie := range f.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		f.cookies[cookie.Name] = cookie
	}
	return rec
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	return f.do("GET", path, nil, "")
}

func (f *fixture) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	return f.do("POST", path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func (f *fixture) postJSON(path string, v interface{}) *httptest.ResponseRecorder {
	data, err := json.Marshal(v)
	require.NoError(f.t, err)
	return f.do("POST", path, strings.NewReader(string(data)), "application/json")
}

// signIn logs the test visitor in through the login handler.
func (f *fixture) signIn() {
	f.t.Helper()
	rec := f.postForm("/login", url.Values{"email": {"ana@example.com"}, "password": {"password123"}})
	require.Equal(f.t, http.StatusSeeOther, rec.Code)
}

// cartPage fetches the cart page body for content assertions.
func (f *fixture) cartPage() string {
	rec := f.get("/cart")
	require.Equal(f.t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
