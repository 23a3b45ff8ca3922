package backend

import (
	"context"
	"fmt"
	"io"

	"ticketlive/internal/models"
)

// Me calls GET /users/me for the current profile.
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, "GET", "/users/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers calls GET /users (admin only).
func (c *Client) ListUsers(ctx context.Context, token string) ([]*models.User, error) {
	var users []*models.User
	if err := c.do(ctx, "GET", "/users", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser calls GET /users/:id.
func (c *Client) GetUser(ctx context.Context, token string, id int) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, "GET", fmt.Sprintf("/users/%d", id), token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser calls PUT /users/:id with a profile merge patch.
func (c *Client) UpdateUser(ctx context.Context, token string, id int, update models.ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, "PUT", fmt.Sprintf("/users/%d", id), token, update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// BanUser calls POST /users/:id/ban (admin only).
func (c *Client) BanUser(ctx context.Context, token string, id int) error {
	return c.do(ctx, "POST", fmt.Sprintf("/users/%d/ban", id), token, nil, nil)
}

// UnbanUser calls POST /users/:id/unban (admin only).
func (c *Client) UnbanUser(ctx context.Context, token string, id int) error {
	return c.do(ctx, "POST", fmt.Sprintf("/users/%d/unban", id), token, nil, nil)
}

// UploadResult is the backend's response to a file upload.
type UploadResult struct {
	URL string `json:"url"`
}

// UploadFile forwards a file to POST /file-upload/upload.
func (c *Client) UploadFile(ctx context.Context, token, filename string, file io.Reader) (*UploadResult, error) {
	var result UploadResult
	if err := c.doMultipart(ctx, "POST", "/file-upload/upload", token, "file", filename, file, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UploadProfileImage forwards a profile photo to
// POST /file-upload/profileImage/:id.
func (c *Client) UploadProfileImage(ctx context.Context, token string, userID int, filename string, file io.Reader) (*UploadResult, error) {
	var result UploadResult
	path := fmt.Sprintf("/file-upload/profileImage/%d", userID)
	if err := c.doMultipart(ctx, "POST", path, token, "file", filename, file, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
