package model

import "time"

// UserID uniquely identifies an authenticated principal
type UserID string

// User is an authenticated principal as reported by the identity provider.
// Users are created on first sign-in and keyed by email.
type User struct {
	ID          UserID    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	PictureURL  string    `json:"picture_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Identity is what an identity provider tells us about a principal
type Identity struct {
	Subject     string
	Email       string
	DisplayName string
	PictureURL  string
}
