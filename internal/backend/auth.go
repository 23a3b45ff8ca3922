package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"ticketlive/internal/models"
)

// SignInResult carries the authenticated user together with the backend
// session cookie value to persist for later calls.
type SignInResult struct {
	User  *models.User
	Token string
}

// SignIn calls POST /auth/signin and captures the session cookie the
// backend sets on success.
func (c *Client) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	payload := map[string]string{"email": email, "password": password}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/auth/signin", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp)
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode backend response: %w", err)
	}

	return &SignInResult{User: &user, Token: c.sessionToken(resp)}, nil
}

// SignUp calls POST /auth/signup.
func (c *Client) SignUp(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, "POST", "/auth/signup", "", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SignOut calls POST /auth/signout to invalidate the backend session.
func (c *Client) SignOut(ctx context.Context, token string) error {
	return c.do(ctx, "POST", "/auth/signout", token, nil, nil)
}

// ChangePassword calls POST /auth/change-password.
func (c *Client) ChangePassword(ctx context.Context, token, current, updated string) error {
	payload := map[string]string{
		"currentPassword": current,
		"newPassword":     updated,
	}
	return c.do(ctx, "POST", "/auth/change-password", token, payload, nil)
}

// RequestPasswordReset calls POST /users/request-password-reset. The
// backend owns token issuance and delivery.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	payload := map[string]string{"email": email}
	return c.do(ctx, "POST", "/users/request-password-reset", "", payload, nil)
}

// ResetPassword calls POST /users/reset-password with a reset token.
func (c *Client) ResetPassword(ctx context.Context, resetToken, password string) error {
	payload := map[string]string{"token": resetToken, "password": password}
	return c.do(ctx, "POST", "/users/reset-password", "", payload, nil)
}
