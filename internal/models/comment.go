package models

import (
	"errors"
	"strings"
	"time"
)

// Comment is a visitor testimonial kept in the local JSON file store.
type Comment struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate validates a new testimonial
func (c *Comment) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("name is required")
	}
	if len(c.Name) > 80 {
		return errors.New("name must be less than 80 characters")
	}
	if strings.TrimSpace(c.Message) == "" {
		return errors.New("message is required")
	}
	if len(c.Message) > 1000 {
		return errors.New("message must be less than 1000 characters")
	}
	if c.Rating < 1 || c.Rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}
	return nil
}

// Subscriber is a newsletter recipient kept in the local JSON file store.
type Subscriber struct {
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribed_at"`
}
