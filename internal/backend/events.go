package backend

import (
	"context"
	"fmt"
	"net/url"

	"ticketlive/internal/models"
)

// EventFilter narrows ListEvents results.
type EventFilter struct {
	Category string
	Search   string
	Featured bool
}

// ListEvents calls GET /events with optional filters.
func (c *Client) ListEvents(ctx context.Context, filter EventFilter) ([]*models.Event, error) {
	query := url.Values{}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Featured {
		query.Set("featured", "true")
	}

	path := "/events"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var events []*models.Event
	if err := c.do(ctx, "GET", path, "", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetEvent calls GET /events/:id.
func (c *Client) GetEvent(ctx context.Context, id int) (*models.Event, error) {
	var event models.Event
	if err := c.do(ctx, "GET", fmt.Sprintf("/events/%d", id), "", nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// CreateEvent calls POST /events (admin only).
func (c *Client) CreateEvent(ctx context.Context, token string, req *models.EventCreateRequest) (*models.Event, error) {
	var event models.Event
	if err := c.do(ctx, "POST", "/events", token, req, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEvent calls PUT /events/:id (admin only).
func (c *Client) UpdateEvent(ctx context.Context, token string, id int, req *models.EventUpdateRequest) (*models.Event, error) {
	var event models.Event
	if err := c.do(ctx, "PUT", fmt.Sprintf("/events/%d", id), token, req, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteEvent calls DELETE /events/:id (admin only).
func (c *Client) DeleteEvent(ctx context.Context, token string, id int) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/events/%d", id), token, nil, nil)
}

// ListCategories calls GET /categories.
func (c *Client) ListCategories(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	if err := c.do(ctx, "GET", "/categories", "", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory calls POST /categories (admin only).
func (c *Client) CreateCategory(ctx context.Context, token string, req *models.CategoryCreateRequest) (*models.Category, error) {
	var category models.Category
	if err := c.do(ctx, "POST", "/categories", token, req, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory calls PUT /categories/:id (admin only).
func (c *Client) UpdateCategory(ctx context.Context, token string, id int, req *models.CategoryUpdateRequest) (*models.Category, error) {
	var category models.Category
	if err := c.do(ctx, "PUT", fmt.Sprintf("/categories/%d", id), token, req, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory calls DELETE /categories/:id (admin only).
func (c *Client) DeleteCategory(ctx context.Context, token string, id int) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/categories/%d", id), token, nil, nil)
}
