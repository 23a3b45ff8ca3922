// Package session persists the visitor's client-side state in the
// cookie session: cart, favorites, coupon state, the order-history id,
// and the cached auth user. Every value is a JSON blob under its own
// key, loaded at the start of a request and flushed on mutation.
// Securecookie caps the encoded session at 4KB, so anything unbounded
// (the order history) lives in a file store and only its key is here.
package session

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"ticketlive/internal/models"
)

const sessionName = "ticketlive_session"

// Session value keys. Renaming one orphans the state visitors already
// carry under it.
const (
	KeyCart           = "cart"
	KeyFavorites      = "favorites"
	KeyOrderHistory   = "order_history_id"
	KeyAppliedCoupon  = "applied_coupon"
	KeyPendingCoupon  = "pending_coupon"
	KeyPendingOrderID = "pending_order_id"
	KeyUser           = "user"
	KeyBackendToken   = "backend_token"
	KeyPasswordChange = "password_change_at"
	KeyCSRFToken      = "csrf_token"
)

// Store wraps a gorilla session store with typed accessors for the
// TicketLive state keys.
type Store struct {
	store sessions.Store
}

// NewStore creates a cookie-backed store with the given secret.
func NewStore(secret string) *Store {
	cookieStore := sessions.NewCookieStore([]byte(secret))
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{store: cookieStore}
}

// Get returns the request's session, creating it when absent.
func (s *Store) Get(r *http.Request) (*sessions.Session, error) {
	return s.store.Get(r, sessionName)
}

// getJSON decodes the JSON blob under key into out. A missing or
// malformed value leaves out untouched and returns false.
func getJSON(session *sessions.Session, key string, out interface{}) bool {
	raw, ok := session.Values[key]
	if !ok {
		return false
	}
	encoded, ok := raw.(string)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(encoded), out) == nil
}

// setJSON stores v as a JSON blob under key.
func setJSON(session *sessions.Session, key string, v interface{}) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return
	}
	session.Values[key] = string(encoded)
}

// Cart loads the visitor's cart, empty when none is stored.
func Cart(session *sessions.Session) *models.Cart {
	var cart models.Cart
	getJSON(session, KeyCart, &cart)
	return &cart
}

// SaveCart flushes the cart back into the session.
func SaveCart(session *sessions.Session, cart *models.Cart) {
	setJSON(session, KeyCart, cart)
}

// Favorites loads the visitor's favorite events.
func Favorites(session *sessions.Session) []models.FavoriteEvent {
	var favorites []models.FavoriteEvent
	getJSON(session, KeyFavorites, &favorites)
	return favorites
}

// SaveFavorites flushes the favorites list.
func SaveFavorites(session *sessions.Session, favorites []models.FavoriteEvent) {
	setJSON(session, KeyFavorites, favorites)
}

// OrderHistoryID returns the key the visitor's orders are filed under
// in the order store, minting one on first use. The caller's session
// save persists a minted id.
func OrderHistoryID(session *sessions.Session) string {
	if id, ok := session.Values[KeyOrderHistory].(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	session.Values[KeyOrderHistory] = id
	return id
}

// AppliedCoupon loads the coupon claimed against the current cart, or nil.
func AppliedCoupon(session *sessions.Session) *models.AppliedCoupon {
	var applied models.AppliedCoupon
	if !getJSON(session, KeyAppliedCoupon, &applied) {
		return nil
	}
	if applied.Coupon.Code == "" {
		return nil
	}
	return &applied
}

// SaveAppliedCoupon stores the claimed coupon; nil removes it.
func SaveAppliedCoupon(session *sessions.Session, applied *models.AppliedCoupon) {
	if applied == nil {
		delete(session.Values, KeyAppliedCoupon)
		return
	}
	setJSON(session, KeyAppliedCoupon, applied)
}

// PendingCoupon returns a coupon code entered before the cart had items.
func PendingCoupon(session *sessions.Session) string {
	code, _ := session.Values[KeyPendingCoupon].(string)
	return code
}

// SavePendingCoupon stores a deferred coupon code; empty removes it.
func SavePendingCoupon(session *sessions.Session, code string) {
	if code == "" {
		delete(session.Values, KeyPendingCoupon)
		return
	}
	session.Values[KeyPendingCoupon] = code
}

// PendingOrderID bridges the redirect out to the payment provider and
// the redirect back to the success page.
func PendingOrderID(session *sessions.Session) string {
	id, _ := session.Values[KeyPendingOrderID].(string)
	return id
}

// SavePendingOrderID stores the in-flight order id; empty removes it.
func SavePendingOrderID(session *sessions.Session, id string) {
	if id == "" {
		delete(session.Values, KeyPendingOrderID)
		return
	}
	session.Values[KeyPendingOrderID] = id
}

// User loads the cached auth user, or nil when logged out.
func User(session *sessions.Session) *models.User {
	var user models.User
	if !getJSON(session, KeyUser, &user) {
		return nil
	}
	if user.ID == 0 {
		return nil
	}
	return &user
}

// SaveUser caches the auth user; nil removes it.
func SaveUser(session *sessions.Session, user *models.User) {
	if user == nil {
		delete(session.Values, KeyUser)
		return
	}
	setJSON(session, KeyUser, user)
}

// BackendToken returns the stored backend session cookie value.
func BackendToken(session *sessions.Session) string {
	token, _ := session.Values[KeyBackendToken].(string)
	return token
}

// SaveBackendToken stores the backend session cookie value; empty removes it.
func SaveBackendToken(session *sessions.Session, token string) {
	if token == "" {
		delete(session.Values, KeyBackendToken)
		return
	}
	session.Values[KeyBackendToken] = token
}

// PasswordChangeAt returns when the user last changed their password.
func PasswordChangeAt(session *sessions.Session) (time.Time, bool) {
	unix, ok := session.Values[KeyPasswordChange].(int64)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}

// SavePasswordChangeAt records a password change for the cooldown check.
func SavePasswordChangeAt(session *sessions.Session, at time.Time) {
	session.Values[KeyPasswordChange] = at.Unix()
}

// ClearVisitorState wipes everything tied to the logged-in user: cart,
// applied and pending coupon, cached user, and backend token. The
// order-history id stays, so past orders remain visible after logout.
func ClearVisitorState(session *sessions.Session) {
	delete(session.Values, KeyCart)
	delete(session.Values, KeyAppliedCoupon)
	delete(session.Values, KeyPendingCoupon)
	delete(session.Values, KeyPendingOrderID)
	delete(session.Values, KeyUser)
	delete(session.Values, KeyBackendToken)
}
