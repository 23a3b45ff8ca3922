package models

import (
	"errors"
	"strings"
	"time"
)

// CouponType represents how a coupon's value is interpreted
type CouponType string

const (
	CouponPercent CouponType = "PERCENT"
	CouponFixed   CouponType = "FIXED"
)

// Coupon represents a discount code as the backend reports it
type Coupon struct {
	ID        int        `json:"id"`
	Code      string     `json:"code"`
	Type      CouponType `json:"type"`
	Value     int        `json:"value"` // percent points or cents, per Type
	Active    bool       `json:"active"`
	MaxUses   int        `json:"max_uses"`
	UsedCount int        `json:"used_count"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// AppliedCoupon records a coupon successfully claimed against a cart.
type AppliedCoupon struct {
	Coupon Coupon `json:"coupon"`
	CartID string `json:"cart_id"`
}

// Discount computes the coupon's discount for an order total, in cents.
// PERCENT coupons take the floor of total*value/100; FIXED coupons are
// the flat value. The result is always clamped to [0, total].
func (c Coupon) Discount(total int) int {
	if total <= 0 {
		return 0
	}

	var discount int
	switch c.Type {
	case CouponPercent:
		discount = total * c.Value / 100
	case CouponFixed:
		discount = c.Value
	default:
		return 0
	}

	if discount < 0 {
		return 0
	}
	if discount > total {
		return total
	}
	return discount
}

// CouponCreateRequest represents the data needed to create a coupon
type CouponCreateRequest struct {
	Code      string     `json:"code"`
	Type      CouponType `json:"type"`
	Value     int        `json:"value"`
	MaxUses   int        `json:"max_uses"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// CouponUpdateRequest represents the data that can be updated for a coupon
type CouponUpdateRequest struct {
	Type    CouponType `json:"type"`
	Value   int        `json:"value"`
	Active  bool       `json:"active"`
	MaxUses int        `json:"max_uses"`
}

// Validate validates coupon creation data
func (req *CouponCreateRequest) Validate() error {
	if strings.TrimSpace(req.Code) == "" {
		return errors.New("coupon code is required")
	}
	if len(req.Code) > 40 {
		return errors.New("coupon code must be less than 40 characters")
	}
	if err := validateCouponValue(req.Type, req.Value); err != nil {
		return err
	}
	if req.MaxUses < 0 {
		return errors.New("max uses cannot be negative")
	}
	return nil
}

// Validate validates coupon update data
func (req *CouponUpdateRequest) Validate() error {
	if err := validateCouponValue(req.Type, req.Value); err != nil {
		return err
	}
	if req.MaxUses < 0 {
		return errors.New("max uses cannot be negative")
	}
	return nil
}

func validateCouponValue(couponType CouponType, value int) error {
	switch couponType {
	case CouponPercent:
		if value < 1 || value > 100 {
			return errors.New("percent value must be between 1 and 100")
		}
	case CouponFixed:
		if value <= 0 {
			return errors.New("fixed value must be positive")
		}
	default:
		return errors.New("invalid coupon type")
	}
	return nil
}
