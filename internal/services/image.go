package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// AssetService processes and stores uploaded images for the newsletter
// composer and testimonials. Banners are bounded to a web-friendly width
// and re-encoded as JPEG before storage.
type AssetService struct {
	storage StorageService
}

// NewAssetService creates a new asset service.
func NewAssetService(storage StorageService) *AssetService {
	return &AssetService{storage: storage}
}

const (
	maxBannerWidth = 1200
	jpegQuality    = 85
)

// UploadedAsset describes a stored asset.
type UploadedAsset struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// UploadBanner decodes, bounds, and stores a newsletter banner image.
func (s *AssetService) UploadBanner(ctx context.Context, reader io.Reader, filename string) (*UploadedAsset, error) {
	img, format, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if !isValidImageFormat(format) {
		return nil, fmt.Errorf("unsupported image format: %s", format)
	}

	if img.Bounds().Dx() > maxBannerWidth {
		img = imaging.Resize(img, maxBannerWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	key := generateAssetKey("newsletter", filename)
	url, err := s.storage.Upload(ctx, key, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len()))
	if err != nil {
		return nil, err
	}

	return &UploadedAsset{Key: key, URL: url}, nil
}

// Delete removes a stored asset.
func (s *AssetService) Delete(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}

func isValidImageFormat(format string) bool {
	switch format {
	case "jpeg", "png", "gif":
		return true
	}
	return false
}

// generateAssetKey builds a unique storage key, keeping a sanitized
// version of the original name for traceability.
func generateAssetKey(prefix, filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.ToLower(strings.ReplaceAll(base, " ", "-"))
	if base == "" {
		base = "asset"
	}
	return fmt.Sprintf("%s/%s-%s.jpg", prefix, base, uuid.NewString()[:8])
}
