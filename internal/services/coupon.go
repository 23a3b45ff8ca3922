package services

import (
	"context"
	"errors"
	"strings"

	"ticketlive/internal/backend"
	"ticketlive/internal/models"
)

// CouponService reconciles the visitor's coupon state with the backend.
// Claiming, usage limits, and expiry are all backend rules; this service
// only decides when to call, what to store, and which message to show.
type CouponService struct {
	client *backend.Client
}

// NewCouponService creates a coupon service over the backend client.
func NewCouponService(client *backend.Client) *CouponService {
	return &CouponService{client: client}
}

// ApplyResult reports what happened to an apply attempt.
type ApplyResult struct {
	Applied *models.AppliedCoupon
	// Deferred is true when the cart was empty and the code was stashed
	// to be claimed on the first add-to-cart.
	Deferred bool
}

// ErrEmptyCode is returned when the submitted code is blank.
var ErrEmptyCode = errors.New("coupon code is required")

// Apply claims code against the visitor's backend cart. With an empty
// cart there is nothing to claim against, so the code is handed back as
// deferred without contacting the backend.
func (s *CouponService) Apply(ctx context.Context, token, code string, cartEmpty bool) (*ApplyResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrEmptyCode
	}

	if cartEmpty {
		return &ApplyResult{Deferred: true}, nil
	}

	cartID, err := s.client.ActiveCart(ctx, token)
	if err != nil {
		return nil, err
	}

	coupon, err := s.client.ClaimCoupon(ctx, token, code, cartID)
	if err != nil {
		return nil, err
	}

	return &ApplyResult{
		Applied: &models.AppliedCoupon{Coupon: *coupon, CartID: cartID},
	}, nil
}

// Confirm consumes the applied coupon at checkout.
func (s *CouponService) Confirm(ctx context.Context, token string, applied *models.AppliedCoupon) error {
	if applied == nil {
		return nil
	}
	return s.client.ConfirmCoupon(ctx, token, applied.Coupon.Code, applied.CartID)
}

// UserMessage translates a coupon claim failure into a user-facing
// message by substring-matching the backend's error string. The backend
// emits Spanish messages; anything unrecognized falls through to a
// generic message.
func UserMessage(err error) string {
	var backendErr *backend.BackendError
	if !errors.As(err, &backendErr) {
		return "We couldn't apply the coupon. Please try again."
	}

	message := strings.ToLower(backendErr.Message)
	switch {
	case strings.Contains(message, "ya usaste"):
		return "You have already used this coupon."
	case strings.Contains(message, "no existe"):
		return "That coupon code doesn't exist."
	case strings.Contains(message, "agotado"):
		return "This coupon has run out of uses."
	case strings.Contains(message, "inactivo"):
		return "This coupon is no longer active."
	case strings.Contains(message, "expirado"), strings.Contains(message, "vencido"):
		return "This coupon has expired."
	default:
		return "We couldn't apply the coupon. Please try again."
	}
}
