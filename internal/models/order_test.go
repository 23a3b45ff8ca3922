package models

import (
	"testing"
	"time"
)

func validOrder() Order {
	return Order{
		ID:   "ord-1",
		Date: time.Now(),
		Items: []OrderItem{
			{EventID: 1, Title: "Concert", Quantity: 2, UnitPrice: 5000},
		},
		Total:         10000,
		Status:        OrderPending,
		PaymentMethod: "mercadopago",
	}
}

func TestOrderTotalWithDiscount(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		discount int
		want     int
	}{
		{"no discount", 10000, 0, 10000},
		{"partial discount", 10000, 2000, 8000},
		{"full discount", 4550, 4550, 0},
		{"discount over total clamps to zero", 4550, 5000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := Order{Total: tt.total, Discount: tt.discount}
			if got := order.TotalWithDiscount(); got != tt.want {
				t.Errorf("TotalWithDiscount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOrderValidate(t *testing.T) {
	t.Run("valid order", func(t *testing.T) {
		order := validOrder()
		if err := order.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		order := validOrder()
		order.ID = ""
		if err := order.Validate(); err == nil {
			t.Error("expected error for missing id")
		}
	})

	t.Run("no items", func(t *testing.T) {
		order := validOrder()
		order.Items = nil
		if err := order.Validate(); err == nil {
			t.Error("expected error for empty items")
		}
	})

	t.Run("discount above total", func(t *testing.T) {
		order := validOrder()
		order.Discount = order.Total + 1
		if err := order.Validate(); err == nil {
			t.Error("expected error for oversized discount")
		}
	})

	t.Run("bad status", func(t *testing.T) {
		order := validOrder()
		order.Status = "SHIPPED"
		if err := order.Validate(); err == nil {
			t.Error("expected error for unknown status")
		}
	})
}

func TestOrderIsPending(t *testing.T) {
	order := validOrder()
	if !order.IsPending() {
		t.Error("expected pending order")
	}

	order.Status = OrderCompleted
	if order.IsPending() {
		t.Error("completed order reported as pending")
	}
}
