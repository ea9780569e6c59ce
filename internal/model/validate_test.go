package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsernameAcceptsValidShapes(t *testing.T) {
	valid := []string{
		"abc",
		"alice",
		"Alice_99",
		"a-b_c",
		"___",
		"---",
		"ABCDEFGHIJKLMNOPQRST", // 20 chars
		"user-name_2024",
	}
	for _, u := range valid {
		assert.NoError(t, ValidateUsername(u), u)
	}
}

func TestValidateUsernameRejectsWithSpecificReason(t *testing.T) {
	tests := []struct {
		name     string
		username string
		want     error
	}{
		{"empty", "", ErrUsernameTooShort},
		{"two chars", "ab", ErrUsernameTooShort},
		{"twenty one chars", strings.Repeat("a", 21), ErrUsernameTooLong},
		{"space", "al ice", ErrUsernameInvalidChars},
		{"dot", "al.ice", ErrUsernameInvalidChars},
		{"at sign", "@alice", ErrUsernameInvalidChars},
		{"unicode", "ålice", ErrUsernameInvalidChars},
		{"slash", "a/b/c", ErrUsernameInvalidChars},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrInvalidUsername)
		})
	}
}

func TestValidateUsernameExhaustiveCharset(t *testing.T) {
	for r := rune(0); r < 128; r++ {
		s := "ab" + string(r)
		err := ValidateUsername(s)
		if isHandleRune(r) {
			assert.NoError(t, err, "%q", s)
		} else {
			assert.ErrorIs(t, err, ErrUsernameInvalidChars, "%q", s)
		}
	}
}

func TestValidateTitle(t *testing.T) {
	assert.NoError(t, ValidateTitle("demo-1"))
	assert.NoError(t, ValidateTitle(strings.Repeat("x", 30)))
	assert.ErrorIs(t, ValidateTitle("ab"), ErrTitleTooShort)
	assert.ErrorIs(t, ValidateTitle(strings.Repeat("x", 31)), ErrTitleTooLong)
	assert.ErrorIs(t, ValidateTitle("my song"), ErrTitleInvalidChars)
	assert.ErrorIs(t, ValidateTitle("my song"), ErrInvalidTitle)
}

func TestValidateUpload(t *testing.T) {
	assert.NoError(t, ValidateUpload("audio/mpeg", 2_000_000))
	assert.NoError(t, ValidateUpload("audio/wav", MaxClipSize))
	assert.NoError(t, ValidateUpload("Audio/OGG", 1))

	assert.ErrorIs(t, ValidateUpload("image/png", 100), ErrNotAudio)
	assert.ErrorIs(t, ValidateUpload("", 100), ErrNotAudio)
	assert.ErrorIs(t, ValidateUpload("video/mp4", 100), ErrNotAudio)
	assert.ErrorIs(t, ValidateUpload("audio/mpeg", MaxClipSize+1), ErrFileTooLarge)
	assert.ErrorIs(t, ValidateUpload("audio/mpeg", 0), ErrEmptyFile)
}

func TestCanonicalUsername(t *testing.T) {
	assert.Equal(t, "alice", CanonicalUsername("@Alice"))
	assert.Equal(t, "bob", CanonicalUsername("  BOB "))
}

func TestNormalizeInput(t *testing.T) {
	assert.Equal(t, "mysong-_1", NormalizeInput("My Song!-_1"))
	assert.Equal(t, "", NormalizeInput("!!!"))
}

func TestIsReservedUsername(t *testing.T) {
	assert.True(t, IsReservedUsername("terms"))
	assert.True(t, IsReservedUsername("API"))
	assert.False(t, IsReservedUsername("alice"))
}

func TestReservedUsernamesCoverRouteWords(t *testing.T) {
	routeWords := []string{
		"api", "auth", "media", "static", "terms", "privacy", "disclaimer",
		"cookie-policy", "copyright", "contact", "metrics", "dashboard", "events",
		"clips", "username",
	}
	for _, w := range routeWords {
		assert.True(t, IsReservedUsername(w), w)
	}
	assert.Len(t, reservedUsernames, len(routeWords))
}
