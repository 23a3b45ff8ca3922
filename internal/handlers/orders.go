package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ticketlive/internal/render"
	"ticketlive/internal/services"
	"ticketlive/internal/session"
)

// OrdersHandler serves the visitor's order history from the order store.
type OrdersHandler struct {
	base
	orders *services.OrderStore
}

// NewOrdersHandler creates the order history handler.
func NewOrdersHandler(store *session.Store, renderer *render.Renderer, orders *services.OrderStore) *OrdersHandler {
	return &OrdersHandler{base: base{store: store, renderer: renderer}, orders: orders}
}

// List renders the visitor's orders, newest first.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	orders, err := h.orders.List(session.OrderHistoryID(sess))
	if err != nil {
		log.Printf("failed to load order history: %v", err)
	}

	data := h.page(w, r, sess, "My orders")
	data.Data = map[string]interface{}{"Orders": orders}
	h.renderer.HTML(w, http.StatusOK, "orders.html", data)
}

// Detail renders one order from the history.
func (h *OrdersHandler) Detail(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	order, err := h.orders.Find(session.OrderHistoryID(sess), chi.URLParam(r, "id"))
	if err != nil {
		log.Printf("failed to load order history: %v", err)
	}
	if order != nil {
		data := h.page(w, r, sess, "Order "+order.ID)
		data.Data = map[string]interface{}{"Order": order}
		h.renderer.HTML(w, http.StatusOK, "order_detail.html", data)
		return
	}

	data := h.page(w, r, sess, "Page not found")
	h.renderer.HTML(w, http.StatusNotFound, "not_found.html", data)
}
