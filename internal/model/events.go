package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventClipAdded       EventType = "clip_added"
	EventClipRemoved     EventType = "clip_removed"
	EventUsernameChanged EventType = "username_changed"
)

// Event describes a change to a public profile
type Event struct {
	Type      EventType
	Timestamp time.Time
	Username  string // the profile the event belongs to
	Title     string // empty for profile-level events
	Payload   any    // type-specific data
}

// UsernameChangedPayload contains data for username changed events
type UsernameChangedPayload struct {
	OldUsername string
	NewUsername string
}
