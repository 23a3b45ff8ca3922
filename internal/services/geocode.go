package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// GeocoderConfig configures the third-party geocoder.
type GeocoderConfig struct {
	BaseURL string
	Email   string
}

// GeocodeService resolves event addresses to coordinates for the map
// components. Queries that miss are retried with progressively relaxed
// variants; the first result with two coordinates wins.
type GeocodeService struct {
	config GeocoderConfig
	client *http.Client
}

// NewGeocodeService creates a new geocoding service.
func NewGeocodeService(config GeocoderConfig) *GeocodeService {
	if config.BaseURL == "" {
		config.BaseURL = "https://nominatim.openstreetmap.org"
	}
	return &GeocodeService{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Coordinates is a resolved map position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type geocodeResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// queryVariants builds up to six progressively relaxed queries for an
// address like "Venue, Street 123, City, Country": the full string
// first, then with leading segments dropped, then the venueless street
// form, and finally just city and country.
func queryVariants(address string) []string {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil
	}

	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var variants []string
	seen := make(map[string]bool)
	add := func(query string) {
		query = strings.TrimSpace(query)
		if query == "" || seen[query] || len(variants) >= 6 {
			return
		}
		seen[query] = true
		variants = append(variants, query)
	}

	add(address)
	for i := 1; i < len(parts) && i < 4; i++ {
		add(strings.Join(parts[i:], ", "))
	}
	if len(parts) >= 2 {
		// city + country
		add(strings.Join(parts[len(parts)-2:], ", "))
		// city alone
		add(parts[len(parts)-2])
	}

	return variants
}

// Lookup geocodes an address, trying each relaxed variant in turn.
func (s *GeocodeService) Lookup(ctx context.Context, address string) (*Coordinates, error) {
	variants := queryVariants(address)
	if len(variants) == 0 {
		return nil, fmt.Errorf("address is empty")
	}

	for _, query := range variants {
		coords, err := s.search(ctx, query)
		if err != nil {
			return nil, err
		}
		if coords != nil {
			return coords, nil
		}
	}

	return nil, fmt.Errorf("no results for address %q", address)
}

func (s *GeocodeService) search(ctx context.Context, query string) (*Coordinates, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	if s.config.Email != "" {
		params.Set("email", s.config.Email)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", s.config.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode request: %w", err)
	}
	req.Header.Set("User-Agent", "ticketlive-frontend")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach geocoder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var results []geocodeResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode geocoder response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return nil, nil
	}

	return &Coordinates{Lat: lat, Lon: lon}, nil
}
