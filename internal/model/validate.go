package model

import (
	"strings"
	"unicode/utf8"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 20

	TitleMinLength = 3
	TitleMaxLength = 30

	// MaxClipSize is the largest accepted upload in bytes (10 MiB)
	MaxClipSize int64 = 10 << 20
)

// reservedUsernames collide with top-level routes and can never be claimed
var reservedUsernames = map[string]bool{
	"api":           true,
	"auth":          true,
	"clips":         true,
	"contact":       true,
	"cookie-policy": true,
	"copyright":     true,
	"dashboard":     true,
	"disclaimer":    true,
	"events":        true,
	"media":         true,
	"metrics":       true,
	"privacy":       true,
	"static":        true,
	"terms":         true,
	"username":      true,
}

// ValidateUsername checks the username shape: 3-20 characters from [a-zA-Z0-9_-]
func ValidateUsername(username string) error {
	return validateHandle(username, UsernameMinLength, UsernameMaxLength,
		ErrUsernameTooShort, ErrUsernameTooLong, ErrUsernameInvalidChars)
}

// ValidateTitle checks the clip title shape: 3-30 characters from [a-zA-Z0-9_-]
func ValidateTitle(title string) error {
	return validateHandle(title, TitleMinLength, TitleMaxLength,
		ErrTitleTooShort, ErrTitleTooLong, ErrTitleInvalidChars)
}

func validateHandle(s string, minLen, maxLen int, tooShort, tooLong, badChars error) error {
	n := utf8.RuneCountInString(s)
	switch {
	case n < minLen:
		return tooShort
	case n > maxLen:
		return tooLong
	}
	for _, r := range s {
		if !isHandleRune(r) {
			return badChars
		}
	}
	return nil
}

func isHandleRune(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '-' || r == '_'
}

// ValidateUpload checks the content type and size of an upload
func ValidateUpload(contentType string, size int64) error {
	if !IsAudioContentType(contentType) {
		return ErrNotAudio
	}
	if size <= 0 {
		return ErrEmptyFile
	}
	if size > MaxClipSize {
		return ErrFileTooLarge
	}
	return nil
}

// IsAudioContentType reports whether a MIME type is in the audio/ family
func IsAudioContentType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "audio/")
}

// CanonicalUsername returns the stored form of a username. Uniqueness is
// case-insensitive, so "Alice" and "alice" are the same reservation.
func CanonicalUsername(username string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
}

// CanonicalTitle returns the stored form of a clip title
func CanonicalTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// IsReservedUsername reports whether a username collides with a route
func IsReservedUsername(username string) bool {
	return reservedUsernames[CanonicalUsername(username)]
}

// NormalizeInput lower-cases s and strips anything outside [a-z0-9_-].
// Forms apply it to raw input before validation.
func NormalizeInput(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if isHandleRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
