package domain

import "time"

// User is an account holder. PasswordHash is never serialized.
type User struct {
	ID              string    `json:"_id"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	ProfileImageURL string    `json:"profileImageUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
