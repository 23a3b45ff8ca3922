package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/sessions"

	"ticketlive/internal/backend"
	"ticketlive/internal/middleware"
	"ticketlive/internal/models"
	"ticketlive/internal/render"
	"ticketlive/internal/services"
	"ticketlive/internal/session"
)

// CartHandler manages the session cart and its coupon state.
type CartHandler struct {
	base
	client  *backend.Client
	coupons *services.CouponService
}

// NewCartHandler creates the cart handler.
func NewCartHandler(store *session.Store, renderer *render.Renderer, client *backend.Client, coupons *services.CouponService) *CartHandler {
	return &CartHandler{
		base:    base{store: store, renderer: renderer},
		client:  client,
		coupons: coupons,
	}
}

// View renders the cart with totals and any applied discount.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	cart := session.Cart(sess)
	applied := session.AppliedCoupon(sess)

	total := cart.Total()
	discount := 0
	if applied != nil {
		discount = applied.Coupon.Discount(total)
	}

	data := h.page(w, r, sess, "Cart")
	data.Data = map[string]interface{}{
		"Cart":          cart,
		"AppliedCoupon": applied,
		"Total":         total,
		"Discount":      discount,
		"FinalTotal":    total - discount,
	}
	h.renderer.HTML(w, http.StatusOK, "cart.html", data)
}

// Add puts one ticket for the event into the cart. If a coupon code was
// stashed while the cart was empty, this first add claims it; the stash
// is cleared whether or not the claim succeeds.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	id, err := urlParamInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if middleware.GetUserFromContext(r.Context()) == nil {
		flashError(sess, "Sign in to buy tickets.")
		saveSession(sess, r, w)
		redirect(w, r, fmt.Sprintf("/login?redirect=/events/%d", id))
		return
	}

	event, err := h.client.GetEvent(r.Context(), id)
	if err != nil {
		flashError(sess, "That event is no longer available.")
		saveSession(sess, r, w)
		redirect(w, r, "/events")
		return
	}

	cart := session.Cart(sess)
	wasEmpty := cart.IsEmpty()

	if err := cart.Add(eventCartItem(event)); err != nil {
		if errors.Is(err, models.ErrQuantityLimit) {
			flashError(sess, "You can buy at most 6 tickets per event.")
		} else {
			flashError(sess, "Couldn't add the event to your cart.")
		}
		saveSession(sess, r, w)
		redirect(w, r, "/cart")
		return
	}
	session.SaveCart(sess, cart)

	if wasEmpty {
		h.claimPendingCoupon(r, sess)
	}

	flash(sess, event.Title+" added to your cart.")
	saveSession(sess, r, w)
	redirect(w, r, "/cart")
}

// claimPendingCoupon claims the deferred coupon code now that the cart
// has an item. The pending code is consumed exactly once: it is cleared
// before the claim so a failure never retries it.
func (h *CartHandler) claimPendingCoupon(r *http.Request, sess *sessions.Session) {
	code := session.PendingCoupon(sess)
	if code == "" {
		return
	}
	session.SavePendingCoupon(sess, "")

	token := middleware.GetTokenFromContext(r.Context())
	if token == "" {
		flashError(sess, "Sign in to use your saved coupon.")
		return
	}

	result, err := h.coupons.Apply(r.Context(), token, code, false)
	if err != nil {
		log.Printf("failed to claim pending coupon: %v", err)
		flashError(sess, services.UserMessage(err))
		return
	}

	session.SaveAppliedCoupon(sess, result.Applied)
	flash(sess, "Coupon "+result.Applied.Coupon.Code+" applied.")
}

// Increase bumps the quantity of a cart line by one.
func (h *CartHandler) Increase(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	id, err := urlParamInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	cart := session.Cart(sess)
	if err := cart.IncreaseQuantity(id); err != nil {
		if errors.Is(err, models.ErrQuantityLimit) {
			flashError(sess, "You can buy at most 6 tickets per event.")
		}
	}
	session.SaveCart(sess, cart)
	saveSession(sess, r, w)
	redirect(w, r, "/cart")
}

// Decrease lowers the quantity of a cart line by one, dropping the line
// at zero.
func (h *CartHandler) Decrease(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	id, err := urlParamInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	cart := session.Cart(sess)
	cart.DecreaseQuantity(id)
	session.SaveCart(sess, cart)
	saveSession(sess, r, w)
	redirect(w, r, "/cart")
}

// Remove drops a cart line regardless of quantity.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	id, err := urlParamInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	cart := session.Cart(sess)
	cart.Remove(id)
	session.SaveCart(sess, cart)
	saveSession(sess, r, w)
	redirect(w, r, "/cart")
}

// Clear empties the cart and drops the applied coupon with it.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	cart := session.Cart(sess)
	cart.Clear()
	session.SaveCart(sess, cart)
	session.SaveAppliedCoupon(sess, nil)
	saveSession(sess, r, w)
	redirect(w, r, "/cart")
}

// ApplyCoupon claims a discount code against the current cart. With an
// empty cart the code is stashed for the first add instead.
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	code := r.FormValue("code")
	cart := session.Cart(sess)
	token := middleware.GetTokenFromContext(r.Context())

	if token == "" && !cart.IsEmpty() {
		flashError(sess, "Sign in to use a coupon.")
		saveSession(sess, r, w)
		redirect(w, r, "/login?redirect=/cart")
		return
	}

	result, err := h.coupons.Apply(r.Context(), token, code, cart.IsEmpty())
	if err != nil {
		if errors.Is(err, services.ErrEmptyCode) {
			flashError(sess, "Enter a coupon code.")
		} else {
			log.Printf("failed to apply coupon: %v", err)
			flashError(sess, services.UserMessage(err))
		}
		saveSession(sess, r, w)
		redirect(w, r, "/cart")
		return
	}

	if result.Deferred {
		session.SavePendingCoupon(sess, code)
		flash(sess, "Coupon saved. It will apply when you add an event to your cart.")
	} else {
		session.SaveAppliedCoupon(sess, result.Applied)
		session.SavePendingCoupon(sess, "")
		flash(sess, "Coupon "+result.Applied.Coupon.Code+" applied.")
	}
	saveSession(sess, r, w)
	redirect(w, r, "/cart")
}

// RemoveCoupon drops the applied coupon from the cart.
func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)
	session.SaveAppliedCoupon(sess, nil)
	saveSession(sess, r, w)
	redirect(w, r, "/cart")
}
