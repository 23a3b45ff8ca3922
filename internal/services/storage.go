package services

import (
	"context"
	"io"
)

// StorageService stores uploaded assets (newsletter banners, testimonial
// avatars) and serves them by public URL. Backed by an S3-compatible
// bucket in production and local disk in development.
type StorageService interface {
	// Upload stores a file and returns its public URL
	Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error)

	// Delete removes a file from storage
	Delete(ctx context.Context, key string) error

	// GetURL returns the public URL for a file
	GetURL(key string) string
}
