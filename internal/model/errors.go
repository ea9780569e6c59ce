package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Profile / username errors
	ErrProfileNotFound    = errors.New("profile not found")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrUsernameReserved   = errors.New("username is reserved")
	ErrAlreadyHasUsername = errors.New("user already has a username")
	ErrNoUsername         = errors.New("user has not claimed a username")
	ErrUsernameChanged    = errors.New("username changed during upload")

	// Clip errors
	ErrClipNotFound = errors.New("clip not found")
	ErrClipExists   = errors.New("a clip with this title already exists")
	ErrNotOwner     = errors.New("clip belongs to another user")

	// Object storage errors
	ErrObjectNotFound = errors.New("object not found")
)

// Validation errors. Each specific reason wraps its field-level sentinel so
// callers can match either the reason or the category with errors.Is.
var (
	ErrInvalidUsername      = errors.New("invalid username")
	ErrUsernameTooShort     = fmt.Errorf("%w: must be at least %d characters", ErrInvalidUsername, UsernameMinLength)
	ErrUsernameTooLong      = fmt.Errorf("%w: must be at most %d characters", ErrInvalidUsername, UsernameMaxLength)
	ErrUsernameInvalidChars = fmt.Errorf("%w: only letters, numbers, hyphens and underscores are allowed", ErrInvalidUsername)

	ErrInvalidTitle      = errors.New("invalid title")
	ErrTitleTooShort     = fmt.Errorf("%w: must be at least %d characters", ErrInvalidTitle, TitleMinLength)
	ErrTitleTooLong      = fmt.Errorf("%w: must be at most %d characters", ErrInvalidTitle, TitleMaxLength)
	ErrTitleInvalidChars = fmt.Errorf("%w: only letters, numbers, hyphens and underscores are allowed", ErrInvalidTitle)

	ErrInvalidUpload = errors.New("invalid upload")
	ErrNotAudio      = fmt.Errorf("%w: please upload an audio file", ErrInvalidUpload)
	ErrFileTooLarge  = fmt.Errorf("%w: file size must be under 10MB", ErrInvalidUpload)
	ErrEmptyFile     = fmt.Errorf("%w: file is empty", ErrInvalidUpload)
)
