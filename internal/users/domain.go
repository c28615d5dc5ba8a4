// Package users manages the user directory keyed by phone number.
package users

import (
	"encoding/json"
	"time"
)

// User represents an account in the directory. Phone is stored digits
// only; Checkpointer carries conversation state managed elsewhere and is
// passed through opaquely.
type User struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Phone        string          `json:"phone"`
	Email        *string         `json:"email,omitempty"`
	IsActive     bool            `json:"is_active"`
	Checkpointer json.RawMessage `json:"checkpointer,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// UpdateByPhoneInput carries the optional fields for an update; at least
// one must be set.
type UpdateByPhoneInput struct {
	Phone    string
	NewName  *string
	NewEmail *string
}
