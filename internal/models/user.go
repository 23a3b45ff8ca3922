package models

import (
	"errors"
	"regexp"
	"strings"
)

// User is the authenticated visitor's profile, cached in the session
// from the backend's /users/me response.
type User struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	IsAdmin      bool   `json:"isAdmin"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	ProfilePhoto string `json:"profile_photo"`
	DNI          string `json:"dni,omitempty"`
	Birthday     string `json:"birthday,omitempty"`
	Banned       bool   `json:"banned"`
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail reports whether the address looks deliverable.
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ProfileUpdate carries the fields the edit-profile form may change.
// Empty fields are left untouched by Merge.
type ProfileUpdate struct {
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	DNI      string `json:"dni,omitempty"`
	Birthday string `json:"birthday,omitempty"`
}

// Merge applies the update onto the cached user as a merge patch.
func (u *User) Merge(update ProfileUpdate) {
	if update.Name != "" {
		u.Name = update.Name
	}
	if update.Phone != "" {
		u.Phone = update.Phone
	}
	if update.Address != "" {
		u.Address = update.Address
	}
	if update.DNI != "" {
		u.DNI = update.DNI
	}
	if update.Birthday != "" {
		u.Birthday = update.Birthday
	}
}

// Validate validates a profile update
func (p *ProfileUpdate) Validate() error {
	if p.Name != "" && strings.TrimSpace(p.Name) == "" {
		return errors.New("name cannot be only whitespace")
	}
	if len(p.Name) > 100 {
		return errors.New("name must be less than 100 characters")
	}
	if len(p.Phone) > 30 {
		return errors.New("phone must be less than 30 characters")
	}
	if len(p.Address) > 200 {
		return errors.New("address must be less than 200 characters")
	}
	return nil
}

// RegisterRequest is the payload forwarded to the backend signup endpoint.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

// Validate validates registration data before it leaves this process.
// The backend remains the authority; this only catches obvious mistakes.
func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if r.Email == "" {
		return errors.New("email is required")
	}
	if !ValidateEmail(r.Email) {
		return errors.New("email format is invalid")
	}
	if len(r.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
