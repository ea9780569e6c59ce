package model

import "time"

// Profile is a username reservation: the public handle owned by one user.
// Username is unique across all profiles and each owner holds at most one.
type Profile struct {
	Username    string    `json:"username"`
	OwnerID     UserID    `json:"owner_id"`
	DisplayName string    `json:"display_name"`
	PictureURL  string    `json:"picture_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Availability is the result of an advisory username or title check
type Availability struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}
