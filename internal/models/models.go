// package models defines the data model for the watchlist service
package models

import (
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	Validate() error // Validate checks if the model's data is valid and returns an error if not
}

// Alive reports whether a soft-deletable row has not been tombstoned.
func Alive(deletedAt *time.Time) bool {
	return deletedAt == nil
}

// User is an identity subject. The id is the token subject issued by the identity provider.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email,omitempty"`
	DisplayName string     `json:"display_name,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`
}

// Validate implements [Model].
func (u *User) Validate() error {
	if u.ID == "" {
		return validationError("user id is required")
	}
	return nil
}
