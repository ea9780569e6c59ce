package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeNotFound           = "NOT_FOUND"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeProfileNotFound    = "PROFILE_NOT_FOUND"
	CodeInvalidUsername    = "INVALID_USERNAME"
	CodeUsernameTaken      = "USERNAME_TAKEN"
	CodeUsernameReserved   = "USERNAME_RESERVED"
	CodeAlreadyHasUsername = "ALREADY_HAS_USERNAME"
	CodeNoUsername         = "NO_USERNAME"
	CodeUsernameChanged    = "USERNAME_CHANGED"
	CodeInvalidTitle       = "INVALID_TITLE"
	CodeClipNotFound       = "CLIP_NOT_FOUND"
	CodeClipExists         = "CLIP_EXISTS"
	CodeNotOwner           = "NOT_OWNER"
	CodeNotAudio           = "NOT_AUDIO"
	CodeFileTooLarge       = "FILE_TOO_LARGE"
	CodeEmptyFile          = "EMPTY_FILE"
	CodeInvalidUpload      = "INVALID_UPLOAD"
	CodeDevLoginDisabled   = "DEV_LOGIN_DISABLED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeInvalidIdentity    = "INVALID_IDENTITY"
	CodeProviderDisabled   = "PROVIDER_DISABLED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Validation errors carry their specific reason as the message
	switch {
	case errors.Is(err, model.ErrInvalidUsername):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidUsername, err.Error()}}
	case errors.Is(err, model.ErrInvalidTitle):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidTitle, err.Error()}}
	case errors.Is(err, model.ErrNotAudio):
		return &httpError{http.StatusUnsupportedMediaType, APIError{CodeNotAudio, err.Error()}}
	case errors.Is(err, model.ErrFileTooLarge):
		return &httpError{http.StatusRequestEntityTooLarge, APIError{CodeFileTooLarge, err.Error()}}
	case errors.Is(err, model.ErrEmptyFile):
		return &httpError{http.StatusBadRequest, APIError{CodeEmptyFile, err.Error()}}
	case errors.Is(err, model.ErrInvalidUpload):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidUpload, err.Error()}}
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found"}}
	case errors.Is(err, model.ErrProfileNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeProfileNotFound, "Profile not found"}}
	case errors.Is(err, model.ErrUsernameTaken):
		return &httpError{http.StatusConflict, APIError{CodeUsernameTaken, "Username is already taken"}}
	case errors.Is(err, model.ErrUsernameReserved):
		return &httpError{http.StatusConflict, APIError{CodeUsernameReserved, "Username is reserved"}}
	case errors.Is(err, model.ErrAlreadyHasUsername):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyHasUsername, "You already have a username"}}
	case errors.Is(err, model.ErrNoUsername):
		return &httpError{http.StatusConflict, APIError{CodeNoUsername, "Claim a username first"}}
	case errors.Is(err, model.ErrUsernameChanged):
		return &httpError{http.StatusConflict, APIError{CodeUsernameChanged, "Your username changed during the upload, try again"}}
	case errors.Is(err, model.ErrClipNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeClipNotFound, "Clip not found"}}
	case errors.Is(err, model.ErrClipExists):
		return &httpError{http.StatusConflict, APIError{CodeClipExists, "You already have a clip with this title"}}
	case errors.Is(err, model.ErrNotOwner):
		return &httpError{http.StatusForbidden, APIError{CodeNotOwner, "This belongs to another user"}}
	case errors.Is(err, model.ErrObjectNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Audio not found"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrDevLoginDisabled):
		return &httpError{http.StatusForbidden, APIError{CodeDevLoginDisabled, "Dev login is disabled"}}
	case errors.Is(err, auth.ErrInvalidIDToken), errors.Is(err, auth.ErrIDTokensDisabled):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidToken, "Invalid identity token"}}
	case errors.Is(err, auth.ErrProviderNotEnabled):
		return &httpError{http.StatusNotImplemented, APIError{CodeProviderDisabled, "Sign-in provider is not configured"}}
	case errors.Is(err, auth.ErrInvalidIdentity):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidIdentity, "Identity has no verified email"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewRateLimitedError creates a too-many-requests error
func NewRateLimitedError() error {
	return &httpError{http.StatusTooManyRequests, APIError{CodeRateLimited, "Too many requests, slow down"}}
}

// NewNotFoundError creates a generic not found error
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
