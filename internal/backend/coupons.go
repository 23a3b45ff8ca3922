package backend

import (
	"context"
	"fmt"

	"ticketlive/internal/models"
)

// ListCoupons calls GET /coupons (admin only).
func (c *Client) ListCoupons(ctx context.Context, token string) ([]*models.Coupon, error) {
	var coupons []*models.Coupon
	if err := c.do(ctx, "GET", "/coupons", token, nil, &coupons); err != nil {
		return nil, err
	}
	return coupons, nil
}

// GetCoupon calls GET /coupons/:id (admin only).
func (c *Client) GetCoupon(ctx context.Context, token string, id int) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := c.do(ctx, "GET", fmt.Sprintf("/coupons/%d", id), token, nil, &coupon); err != nil {
		return nil, err
	}
	return &coupon, nil
}

// CreateCoupon calls POST /coupons (admin only).
func (c *Client) CreateCoupon(ctx context.Context, token string, req *models.CouponCreateRequest) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := c.do(ctx, "POST", "/coupons", token, req, &coupon); err != nil {
		return nil, err
	}
	return &coupon, nil
}

// UpdateCoupon calls PUT /coupons/:id (admin only).
func (c *Client) UpdateCoupon(ctx context.Context, token string, id int, req *models.CouponUpdateRequest) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := c.do(ctx, "PUT", fmt.Sprintf("/coupons/%d", id), token, req, &coupon); err != nil {
		return nil, err
	}
	return &coupon, nil
}

// DeleteCoupon calls DELETE /coupons/:id (admin only).
func (c *Client) DeleteCoupon(ctx context.Context, token string, id int) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/coupons/%d", id), token, nil, nil)
}

// ActiveCart calls GET /carts/active for the user's backend cart id.
func (c *Client) ActiveCart(ctx context.Context, token string) (string, error) {
	var cart struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, "GET", "/carts/active", token, nil, &cart); err != nil {
		return "", err
	}
	return cart.ID, nil
}

// ClaimCoupon calls POST /coupons/claim to reserve a discount code
// against a specific cart. The backend owns every validation rule; its
// error message string is what the caller pattern-matches.
func (c *Client) ClaimCoupon(ctx context.Context, token, code, cartID string) (*models.Coupon, error) {
	payload := map[string]string{"code": code, "cartId": cartID}
	var coupon models.Coupon
	if err := c.do(ctx, "POST", "/coupons/claim", token, payload, &coupon); err != nil {
		return nil, err
	}
	return &coupon, nil
}

// ConfirmCoupon calls POST /coupons/confirm to consume a claimed coupon
// at checkout.
func (c *Client) ConfirmCoupon(ctx context.Context, token, code, cartID string) error {
	payload := map[string]string{"code": code, "cartId": cartID}
	return c.do(ctx, "POST", "/coupons/confirm", token, payload, nil)
}

// PaymentPreference is the backend's handle on a created Mercado Pago
// checkout, with the URL the visitor is sent to.
type PaymentPreference struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// CreateMercadoPagoPreference calls POST /payments/mercadopago/preference
// to open a checkout for the given order.
func (c *Client) CreateMercadoPagoPreference(ctx context.Context, token, orderID string, total int) (*PaymentPreference, error) {
	payload := map[string]interface{}{"orderId": orderID, "total": total}
	var preference PaymentPreference
	if err := c.do(ctx, "POST", "/payments/mercadopago/preference", token, payload, &preference); err != nil {
		return nil, err
	}
	return &preference, nil
}

// PaymentVerification is the backend's answer to a payment check.
type PaymentVerification struct {
	Status    string `json:"status"` // approved, pending, rejected
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
}

// VerifyMercadoPagoPayment calls POST /payments/mercadopago/verify.
func (c *Client) VerifyMercadoPagoPayment(ctx context.Context, token, paymentID string) (*PaymentVerification, error) {
	payload := map[string]string{"paymentId": paymentID}
	var verification PaymentVerification
	if err := c.do(ctx, "POST", "/payments/mercadopago/verify", token, payload, &verification); err != nil {
		return nil, err
	}
	return &verification, nil
}
