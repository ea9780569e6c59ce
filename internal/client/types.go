package client

import "time"

// User is the signed-in account
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	PictureURL  string `json:"picture_url,omitempty"`
}

// AuthResult is returned by the sign-in endpoints
type AuthResult struct {
	User         User      `json:"user"`
	Username     string    `json:"username,omitempty"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Me describes the caller and their username, if claimed
type Me struct {
	User    User     `json:"user"`
	Profile *Profile `json:"profile,omitempty"`
}

// Profile is a claimed username
type Profile struct {
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	PictureURL  string    `json:"picture_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Clip is an uploaded clip
type Clip struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Title       string    `json:"title"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Checksum    string    `json:"checksum,omitempty"`
	AudioURL    string    `json:"audio_url"`
	ShareURL    string    `json:"share_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// ClipList is a username's clips, newest first
type ClipList struct {
	Username string `json:"username"`
	Clips    []Clip `json:"clips"`
}

// ProfilePage is a public profile with its clips
type ProfilePage struct {
	Profile *Profile `json:"profile"`
	Clips   []Clip   `json:"clips"`
}

// Availability answers a username or title check. Confirmed is false when
// the answer came from the local cache because the server was unreachable.
type Availability struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
	Confirmed bool   `json:"confirmed"`
}

// Health is the server health response
type Health struct {
	Status string `json:"status"`
}
