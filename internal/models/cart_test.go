package models

import (
	"errors"
	"testing"
)

func testItem(eventID, price int) CartItem {
	return CartItem{
		EventID: eventID,
		Name:    "Test Event",
		Price:   price,
	}
}

func TestCartAdd(t *testing.T) {
	cart := &Cart{}

	if err := cart.Add(testItem(1, 2500)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", cart.Items[0].Quantity)
	}

	// Adding the same event again increments instead of appending.
	if err := cart.Add(testItem(1, 2500)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if len(cart.Items) != 1 {
		t.Errorf("expected 1 item after re-add, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", cart.Items[0].Quantity)
	}
}

func TestCartAddQuantityCap(t *testing.T) {
	cart := &Cart{}

	for i := 0; i < MaxQuantityPerItem; i++ {
		if err := cart.Add(testItem(1, 1000)); err != nil {
			t.Fatalf("Add() #%d error = %v", i+1, err)
		}
	}
	if cart.Items[0].Quantity != MaxQuantityPerItem {
		t.Fatalf("expected quantity %d, got %d", MaxQuantityPerItem, cart.Items[0].Quantity)
	}

	// The seventh add must fail and leave the quantity unchanged.
	err := cart.Add(testItem(1, 1000))
	if !errors.Is(err, ErrQuantityLimit) {
		t.Errorf("expected ErrQuantityLimit, got %v", err)
	}
	if cart.Items[0].Quantity != MaxQuantityPerItem {
		t.Errorf("quantity changed after rejected add: %d", cart.Items[0].Quantity)
	}
}

func TestCartIncreaseQuantity(t *testing.T) {
	cart := &Cart{}
	cart.Add(testItem(1, 1000))

	if err := cart.IncreaseQuantity(1); err != nil {
		t.Fatalf("IncreaseQuantity() error = %v", err)
	}
	if cart.Items[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", cart.Items[0].Quantity)
	}

	if err := cart.IncreaseQuantity(99); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound for missing event, got %v", err)
	}

	cart.Items[0].Quantity = MaxQuantityPerItem
	if err := cart.IncreaseQuantity(1); !errors.Is(err, ErrQuantityLimit) {
		t.Errorf("expected ErrQuantityLimit at the cap, got %v", err)
	}
}

func TestCartDecreaseQuantity(t *testing.T) {
	cart := &Cart{}
	cart.Add(testItem(1, 1000))
	cart.Add(testItem(1, 1000))

	if err := cart.DecreaseQuantity(1); err != nil {
		t.Fatalf("DecreaseQuantity() error = %v", err)
	}
	if cart.Items[0].Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", cart.Items[0].Quantity)
	}

	// Decreasing from one removes the line entirely.
	if err := cart.DecreaseQuantity(1); err != nil {
		t.Fatalf("DecreaseQuantity() error = %v", err)
	}
	if !cart.IsEmpty() {
		t.Errorf("expected empty cart, got %d items", len(cart.Items))
	}
}

func TestCartRemove(t *testing.T) {
	cart := &Cart{}
	cart.Add(testItem(1, 1000))
	cart.Add(testItem(2, 2000))
	cart.Add(testItem(1, 1000))

	cart.Remove(1)

	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(cart.Items))
	}
	if cart.Items[0].EventID != 2 {
		t.Errorf("wrong item removed, remaining event %d", cart.Items[0].EventID)
	}
}

func TestCartTotals(t *testing.T) {
	tests := []struct {
		name      string
		items     []CartItem
		wantTotal int
		wantCount int
	}{
		{
			name:      "empty cart",
			wantTotal: 0,
			wantCount: 0,
		},
		{
			name: "single item",
			items: []CartItem{
				{EventID: 1, Price: 2500, Quantity: 3},
			},
			wantTotal: 7500,
			wantCount: 3,
		},
		{
			name: "mixed items",
			items: []CartItem{
				{EventID: 1, Price: 2500, Quantity: 2},
				{EventID: 2, Price: 10000, Quantity: 1},
				{EventID: 3, Price: 50, Quantity: 6},
			},
			wantTotal: 15300,
			wantCount: 9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := &Cart{Items: tt.items}
			if got := cart.Total(); got != tt.wantTotal {
				t.Errorf("Total() = %d, want %d", got, tt.wantTotal)
			}
			if got := cart.ItemCount(); got != tt.wantCount {
				t.Errorf("ItemCount() = %d, want %d", got, tt.wantCount)
			}
		})
	}
}

func TestCartClear(t *testing.T) {
	cart := &Cart{}
	cart.Add(testItem(1, 1000))
	cart.Add(testItem(2, 2000))

	cart.Clear()

	if !cart.IsEmpty() {
		t.Errorf("expected empty cart after Clear, got %d items", len(cart.Items))
	}
	if cart.Total() != 0 {
		t.Errorf("expected zero total after Clear, got %d", cart.Total())
	}
}
