package models

import "testing"

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple name", "Music", "music"},
		{"spaces to hyphens", "Live Music", "live-music"},
		{"special characters stripped", "Rock & Roll!", "rock-roll"},
		{"leading and trailing junk trimmed", "  Theater  ", "theater"},
		{"numbers kept", "Top 40 Hits", "top-40-hits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateSlug(tt.in); got != tt.want {
				t.Errorf("GenerateSlug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCategoryCreateRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CategoryCreateRequest
		wantErr bool
	}{
		{
			name: "valid",
			req:  CategoryCreateRequest{Name: "Music", Slug: "music"},
		},
		{
			name:    "missing name",
			req:     CategoryCreateRequest{Slug: "music"},
			wantErr: true,
		},
		{
			name:    "missing slug",
			req:     CategoryCreateRequest{Name: "Music"},
			wantErr: true,
		},
		{
			name:    "uppercase slug",
			req:     CategoryCreateRequest{Name: "Music", Slug: "Music"},
			wantErr: true,
		},
		{
			name:    "slug with spaces",
			req:     CategoryCreateRequest{Name: "Live Music", Slug: "live music"},
			wantErr: true,
		},
		{
			name:    "slug ending in hyphen",
			req:     CategoryCreateRequest{Name: "Music", Slug: "music-"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
