package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ticketlive/internal/models"
)

// OrderStore keeps every visitor's order history in a JSON file
// (orders.json), keyed by the history id their session carries. Only
// that id lives in the cookie, so the history can grow without pushing
// the session cookie past the 4KB browsers allow.
type OrderStore struct {
	path string
	mu   sync.Mutex
}

// NewOrderStore creates a store backed by orders.json under dir.
func NewOrderStore(dir string) *OrderStore {
	return &OrderStore{path: filepath.Join(dir, "orders.json")}
}

// List returns the visitor's orders, newest first.
func (s *OrderStore) List(historyID string) ([]models.Order, error) {
	if historyID == "" {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	histories, err := s.load()
	if err != nil {
		return nil, err
	}
	return histories[historyID], nil
}

// Find returns one order from the visitor's history, or nil.
func (s *OrderStore) Find(historyID, orderID string) (*models.Order, error) {
	orders, err := s.List(historyID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == orderID {
			return &orders[i], nil
		}
	}
	return nil, nil
}

// Add prepends an order to the visitor's history.
func (s *OrderStore) Add(historyID string, order models.Order) error {
	if historyID == "" {
		return fmt.Errorf("order history id is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	histories, err := s.load()
	if err != nil {
		return err
	}
	if histories == nil {
		histories = map[string][]models.Order{}
	}

	histories[historyID] = append([]models.Order{order}, histories[historyID]...)
	return s.save(histories)
}

// Resolve transitions a pending order to status. Returns the updated
// order, or nil when the order is missing or already resolved.
func (s *OrderStore) Resolve(historyID, orderID string, status models.OrderStatus) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	histories, err := s.load()
	if err != nil {
		return nil, err
	}

	orders := histories[historyID]
	for i := range orders {
		if orders[i].ID != orderID || !orders[i].IsPending() {
			continue
		}
		orders[i].Status = status
		if err := s.save(histories); err != nil {
			return nil, err
		}
		order := orders[i]
		return &order, nil
	}
	return nil, nil
}

func (s *OrderStore) load() (map[string][]models.Order, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read orders file: %w", err)
	}

	var histories map[string][]models.Order
	if err := json.Unmarshal(data, &histories); err != nil {
		return nil, fmt.Errorf("failed to parse orders file: %w", err)
	}
	return histories, nil
}

func (s *OrderStore) save(histories map[string][]models.Order) error {
	data, err := json.MarshalIndent(histories, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode orders: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// Write-then-rename keeps readers from seeing a half-written file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write orders file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
