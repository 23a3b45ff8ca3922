package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ticketlive/internal/models"
)

// ErrAlreadySubscribed is returned for a duplicate subscription.
var ErrAlreadySubscribed = errors.New("email is already subscribed")

// SubscriberStore keeps newsletter recipients in a JSON file, the same
// shape as the testimonial store.
type SubscriberStore struct {
	path string
	mu   sync.Mutex
}

// NewSubscriberStore creates a store backed by subscribers.json under dir.
func NewSubscriberStore(dir string) *SubscriberStore {
	return &SubscriberStore{path: filepath.Join(dir, "subscribers.json")}
}

// List returns all subscribers.
func (s *SubscriberStore) List() ([]models.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Add records a new subscriber, rejecting duplicates.
func (s *SubscriberStore) Add(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !models.ValidateEmail(email) {
		return errors.New("email format is invalid")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	subscribers, err := s.load()
	if err != nil {
		return err
	}

	for _, sub := range subscribers {
		if sub.Email == email {
			return ErrAlreadySubscribed
		}
	}

	subscribers = append(subscribers, models.Subscriber{
		Email:        email,
		SubscribedAt: time.Now(),
	})
	return s.save(subscribers)
}

func (s *SubscriberStore) load() ([]models.Subscriber, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read subscribers file: %w", err)
	}

	var subscribers []models.Subscriber
	if err := json.Unmarshal(data, &subscribers); err != nil {
		return nil, fmt.Errorf("failed to parse subscribers file: %w", err)
	}
	return subscribers, nil
}

func (s *SubscriberStore) save(subscribers []models.Subscriber) error {
	data, err := json.MarshalIndent(subscribers, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode subscribers: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write subscribers file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
