package request

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzeefun/vzee/internal/api/apierr"
	"github.com/vzeefun/vzee/internal/model"
)

func TestValidateRequiredFields(t *testing.T) {
	err := Validate(&DevLoginRequest{})
	require.Error(t, err)
	assert.Equal(t, 400, apierr.Status(err))
	assert.Contains(t, err.Error(), "email is required")
}

func TestValidateEmail(t *testing.T) {
	err := Validate(&DevLoginRequest{Email: "not-an-email"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email must be a valid email")

	assert.NoError(t, Validate(&DevLoginRequest{Email: "a@example.com"}))
}

func TestValidateUsernameReturnsSpecificReason(t *testing.T) {
	tests := []struct {
		username string
		want     error
	}{
		{"ab", model.ErrUsernameTooShort},
		{strings.Repeat("a", 21), model.ErrUsernameTooLong},
		{"bad name", model.ErrUsernameInvalidChars},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			err := Validate(&ClaimUsernameRequest{Username: tt.username})
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, model.ErrInvalidUsername)
		})
	}
}

func TestValidateUsernameAcceptsAtPrefix(t *testing.T) {
	assert.NoError(t, Validate(&ClaimUsernameRequest{Username: "@Alice_1"}))
}

func TestValidateClipTitle(t *testing.T) {
	assert.NoError(t, Validate(&UploadClipForm{Title: "demo-1"}))
	assert.ErrorIs(t, Validate(&UploadClipForm{Title: "x"}), model.ErrTitleTooShort)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"username":"alice","extra":1}`))
	var req ClaimUsernameRequest
	err := Decode(r, &req)
	require.Error(t, err)
	assert.Equal(t, "invalid request body", err.Error())
}

func TestDecodeValidates(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"username":"alice"}`))
	var req ClaimUsernameRequest
	require.NoError(t, Decode(r, &req))
	assert.Equal(t, "alice", req.Username)
}
