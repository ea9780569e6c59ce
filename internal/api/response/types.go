package response

import (
	"time"

	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/services/auth"
	"github.com/vzeefun/vzee/internal/services/directory"
)

// User represents a signed-in user in API responses
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	PictureURL  string `json:"picture_url,omitempty"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		ID:          string(u.ID),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PictureURL:  u.PictureURL,
	}
}

// AuthResponse is the response for sign-in endpoints
type AuthResponse struct {
	User         User      `json:"user"`
	Username     string    `json:"username,omitempty"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session, username string) AuthResponse {
	return AuthResponse{
		User:         UserFromModel(&s.User),
		Username:     username,
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// MeResponse describes the caller
type MeResponse struct {
	User    User     `json:"user"`
	Profile *Profile `json:"profile,omitempty"`
}

// Profile represents a username reservation in API responses
type Profile struct {
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	PictureURL  string    `json:"picture_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProfileFromModel converts a model.Profile to a response Profile
func ProfileFromModel(p *model.Profile) *Profile {
	if p == nil {
		return nil
	}
	return &Profile{
		Username:    p.Username,
		DisplayName: p.DisplayName,
		PictureURL:  p.PictureURL,
		CreatedAt:   p.CreatedAt,
	}
}

// Clip represents an uploaded clip in API responses
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

// ClipFromModel converts a model.Clip to a response Clip
func ClipFromModel(c *model.Clip, baseURL string) Clip {
	return Clip{
		ID:          string(c.ID),
		Username:    c.OwnerUsername,
		Title:       c.Title,
		ContentType: c.ContentType,
		Size:        c.Size,
		Checksum:    c.Checksum,
		AudioURL:    c.AudioURL,
		ShareURL:    c.ShareURL(baseURL),
		CreatedAt:   c.CreatedAt,
	}
}

// ClipsFromModel converts a clip list, preserving order
func ClipsFromModel(clips []*model.Clip, baseURL string) []Clip {
	result := make([]Clip, len(clips))
	for i, c := range clips {
		result[i] = ClipFromModel(c, baseURL)
	}
	return result
}

// ClipsResponse is a username's clip list
type ClipsResponse struct {
	Username string `json:"username"`
	Clips    []Clip `json:"clips"`
}

// ProfileResponse is a public profile with its clips
type ProfileResponse struct {
	Profile *Profile `json:"profile"`
	Clips   []Clip   `json:"clips"`
}

// ProfileResponseFromView converts a directory view
func ProfileResponseFromView(v *directory.ProfileView, baseURL string) ProfileResponse {
	return ProfileResponse{
		Profile: ProfileFromModel(v.Profile),
		Clips:   ClipsFromModel(v.Clips, baseURL),
	}
}

// Availability is the answer to a username or title check
type Availability struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// AvailabilityFromModel converts a model.Availability
func AvailabilityFromModel(a model.Availability) Availability {
	return Availability(a)
}

// Health is the health check body
type Health struct {
	Status string `json:"status"`
}
