package models

import (
	"errors"
	"time"
)

// OrderStatus represents the status of a locally mirrored order
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// OrderItem is a snapshot of a cart item at checkout time.
type OrderItem struct {
	EventID   int    `json:"event_id"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	Date      string `json:"date"`
	Location  string `json:"location"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unit_price"` // in cents
}

// Order mirrors a checkout in the visitor's session. It is created
// PENDING at checkout initiation and transitions to COMPLETED or
// CANCELLED when payment verification resolves. Orders accumulate and
// are never pruned.
type Order struct {
	ID            string      `json:"id"`
	Date          time.Time   `json:"date"`
	Items         []OrderItem `json:"items"`
	Total         int         `json:"total"`    // in cents, before discount
	Discount      int         `json:"discount"` // in cents
	CouponCode    string      `json:"coupon_code,omitempty"`
	Status        OrderStatus `json:"status"`
	PaymentMethod string      `json:"payment_method"`
}

// TotalWithDiscount returns the payable amount in cents.
func (o *Order) TotalWithDiscount() int {
	total := o.Total - o.Discount
	if total < 0 {
		return 0
	}
	return total
}

// Validate validates the order data
func (o *Order) Validate() error {
	if o.ID == "" {
		return errors.New("order id is required")
	}
	if len(o.Items) == 0 {
		return errors.New("order must contain at least one item")
	}
	if o.Total < 0 {
		return errors.New("order total cannot be negative")
	}
	if o.Discount < 0 || o.Discount > o.Total {
		return errors.New("order discount must be between zero and the total")
	}
	switch o.Status {
	case OrderPending, OrderCompleted, OrderCancelled:
	default:
		return errors.New("invalid order status")
	}
	return nil
}

// IsPending returns true if the order awaits payment verification.
func (o *Order) IsPending() bool {
	return o.Status == OrderPending
}
