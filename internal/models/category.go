package models

import (
	"errors"
	"regexp"
	"strings"
)

// Category represents an event category
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// CategoryCreateRequest represents the data needed to create a category
type CategoryCreateRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// CategoryUpdateRequest represents the data that can be updated for a category
type CategoryUpdateRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// Slug validation regex: lowercase letters, numbers, and hyphens only
var slugRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

// Validate validates category creation data
func (req *CategoryCreateRequest) Validate() error {
	return validateCategoryFields(req.Name, req.Slug, req.Description)
}

// Validate validates category update data
func (req *CategoryUpdateRequest) Validate() error {
	return validateCategoryFields(req.Name, req.Slug, req.Description)
}

func validateCategoryFields(name, slug, description string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("category name is required")
	}
	if len(name) > 100 {
		return errors.New("category name must be less than 100 characters")
	}
	if slug == "" {
		return errors.New("category slug is required")
	}
	if !slugRegex.MatchString(slug) {
		return errors.New("category slug can only contain lowercase letters, numbers, and hyphens")
	}
	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return errors.New("category slug cannot start or end with a hyphen")
	}
	if len(description) > 500 {
		return errors.New("category description must be less than 500 characters")
	}
	return nil
}

// GenerateSlug generates a URL-friendly slug from the category name
func GenerateSlug(name string) string {
	slug := strings.ToLower(name)

	reg := regexp.MustCompile(`[^a-z0-9]+`)
	slug = reg.ReplaceAllString(slug, "-")

	return strings.Trim(slug, "-")
}
