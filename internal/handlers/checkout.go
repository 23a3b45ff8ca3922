package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"ticketlive/internal/backend"
	"ticketlive/internal/middleware"
	"ticketlive/internal/models"
	"ticketlive/internal/render"
	"ticketlive/internal/services"
	"ticketlive/internal/session"
)

// CheckoutHandler drives the checkout flow: a local PENDING order is
// recorded in the order store before the visitor leaves for the payment
// provider, and resolved to COMPLETED or CANCELLED when they return.
type CheckoutHandler struct {
	base
	client  *backend.Client
	coupons *services.CouponService
	orders  *services.OrderStore
}

// NewCheckoutHandler creates the checkout handler.
func NewCheckoutHandler(store *session.Store, renderer *render.Renderer, client *backend.Client, coupons *services.CouponService, orders *services.OrderStore) *CheckoutHandler {
	return &CheckoutHandler{
		base:    base{store: store, renderer: renderer},
		client:  client,
		coupons: coupons,
		orders:  orders,
	}
}

// Page renders the order summary and payment method selection.
func (h *CheckoutHandler) Page(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	cart := session.Cart(sess)
	if cart.IsEmpty() {
		redirect(w, r, "/cart")
		return
	}

	applied := session.AppliedCoupon(sess)
	total := cart.Total()
	discount := 0
	couponCode := ""
	if applied != nil {
		discount = applied.Coupon.Discount(total)
		couponCode = applied.Coupon.Code
	}

	data := h.page(w, r, sess, "Checkout")
	data.Data = map[string]interface{}{
		"Cart":       cart,
		"Total":      total,
		"Discount":   discount,
		"CouponCode": couponCode,
		"FinalTotal": total - discount,
	}
	h.renderer.HTML(w, http.StatusOK, "checkout.html", data)
}

// Submit snapshots the cart as a PENDING order and sends the visitor to
// the payment provider.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)
	token := middleware.GetTokenFromContext(r.Context())

	cart := session.Cart(sess)
	if cart.IsEmpty() {
		redirect(w, r, "/cart")
		return
	}

	applied := session.AppliedCoupon(sess)
	total := cart.Total()
	discount := 0
	couponCode := ""
	if applied != nil {
		discount = applied.Coupon.Discount(total)
		couponCode = applied.Coupon.Code
	}

	order := models.Order{
		ID:            uuid.NewString(),
		Date:          time.Now(),
		Items:         orderItems(cart),
		Total:         total,
		Discount:      discount,
		CouponCode:    couponCode,
		Status:        models.OrderPending,
		PaymentMethod: r.FormValue("payment_method"),
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = "mercadopago"
	}

	preference, err := h.client.CreateMercadoPagoPreference(r.Context(), token, order.ID, order.TotalWithDiscount())
	if err != nil {
		log.Printf("failed to create payment preference: %v", err)
		flashError(sess, "We couldn't start the payment. Please try again.")
		saveSession(sess, r, w)
		redirect(w, r, "/checkout")
		return
	}

	if err := h.orders.Add(session.OrderHistoryID(sess), order); err != nil {
		log.Printf("failed to record order %s: %v", order.ID, err)
		flashError(sess, "We couldn't start the payment. Please try again.")
		saveSession(sess, r, w)
		redirect(w, r, "/checkout")
		return
	}
	session.SavePendingOrderID(sess, order.ID)
	saveSession(sess, r, w)

	http.Redirect(w, r, preference.InitPoint, http.StatusSeeOther)
}

// Success handles the return from an approved payment: the pending
// order completes, the coupon is consumed, and the cart empties.
func (h *CheckoutHandler) Success(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)
	token := middleware.GetTokenFromContext(r.Context())

	paymentID := r.URL.Query().Get("payment_id")
	if paymentID == "" {
		redirect(w, r, "/orders")
		return
	}

	verification, err := h.client.VerifyMercadoPagoPayment(r.Context(), token, paymentID)
	if err != nil || verification.Status != "approved" {
		if err != nil {
			log.Printf("failed to verify payment %s: %v", paymentID, err)
		}
		h.Failure(w, r)
		return
	}

	order := h.resolvePendingOrder(sess, models.OrderCompleted)

	if applied := session.AppliedCoupon(sess); applied != nil {
		if err := h.coupons.Confirm(r.Context(), token, applied); err != nil {
			log.Printf("failed to confirm coupon %s: %v", applied.Coupon.Code, err)
		}
	}

	cart := session.Cart(sess)
	cart.Clear()
	session.SaveCart(sess, cart)
	session.SaveAppliedCoupon(sess, nil)
	session.SavePendingCoupon(sess, "")

	data := h.page(w, r, sess, "Payment confirmed")
	data.Data = map[string]interface{}{"Order": order}
	h.renderer.HTML(w, http.StatusOK, "order_success.html", data)
}

// Failure handles a rejected or abandoned payment: the pending order is
// cancelled and the cart is kept for another attempt.
func (h *CheckoutHandler) Failure(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	h.resolvePendingOrder(sess, models.OrderCancelled)

	data := h.page(w, r, sess, "Payment failed")
	h.renderer.HTML(w, http.StatusOK, "order_failure.html", data)
}

// resolvePendingOrder transitions the in-flight order to status and
// clears the pending marker. Returns the resolved order, or nil when no
// order was pending.
func (h *CheckoutHandler) resolvePendingOrder(sess *sessions.Session, status models.OrderStatus) *models.Order {
	pendingID := session.PendingOrderID(sess)
	if pendingID == "" {
		return nil
	}
	session.SavePendingOrderID(sess, "")

	order, err := h.orders.Resolve(session.OrderHistoryID(sess), pendingID, status)
	if err != nil {
		log.Printf("failed to resolve order %s: %v", pendingID, err)
		return nil
	}
	return order
}

// orderItems snapshots the cart lines for the order record.
func orderItems(cart *models.Cart) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, models.OrderItem{
			EventID:   item.EventID,
			Title:     item.Name,
			Image:     item.Image,
			Date:      item.Date,
			Location:  item.Location,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		})
	}
	return items
}
