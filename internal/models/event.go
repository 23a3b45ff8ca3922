package models

import (
	"errors"
	"strings"
	"time"
)

// Event represents an event as the backend reports it
type Event struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	Price       int       `json:"price"` // in cents
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	Sold        int       `json:"sold"`
	CategoryID  int       `json:"category_id"`
	Category    *Category `json:"category,omitempty"`
	Featured    bool      `json:"featured"`
}

// Available returns how many tickets remain.
func (e *Event) Available() int {
	available := e.Capacity - e.Sold
	if available < 0 {
		return 0
	}
	return available
}

// IsUpcoming reports whether the event has not started yet.
func (e *Event) IsUpcoming() bool {
	return e.Date.After(time.Now())
}

// FavoriteEvent is the session-persisted snapshot of an event the
// visitor marked as a favorite.
type FavoriteEvent struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	Price       int    `json:"price"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Category    string `json:"category,omitempty"`
}

// EventCreateRequest represents the data needed to create an event
type EventCreateRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	Price       int       `json:"price"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	CategoryID  int       `json:"category_id"`
	Featured    bool      `json:"featured"`
}

// EventUpdateRequest represents the data that can be updated for an event
type EventUpdateRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	Price       int       `json:"price"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	CategoryID  int       `json:"category_id"`
	Featured    bool      `json:"featured"`
}

// Validate validates event creation data
func (req *EventCreateRequest) Validate() error {
	return validateEventFields(req.Title, req.Location, req.Price, req.Capacity, req.Date)
}

// Validate validates event update data
func (req *EventUpdateRequest) Validate() error {
	return validateEventFields(req.Title, req.Location, req.Price, req.Capacity, req.Date)
}

func validateEventFields(title, location string, price, capacity int, date time.Time) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("event title is required")
	}
	if len(title) > 150 {
		return errors.New("event title must be less than 150 characters")
	}
	if strings.TrimSpace(location) == "" {
		return errors.New("event location is required")
	}
	if price < 0 {
		return errors.New("event price cannot be negative")
	}
	if capacity <= 0 {
		return errors.New("event capacity must be positive")
	}
	if date.IsZero() {
		return errors.New("event date is required")
	}
	if date.Before(time.Now()) {
		return errors.New("event date must be in the future")
	}
	return nil
}
