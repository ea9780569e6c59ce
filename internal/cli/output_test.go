package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzeefun/vzee/internal/client"
	"github.com/vzeefun/vzee/internal/model"
)

func TestOutputText(t *testing.T) {
	var stdout, stderr bytes.Buffer
	out := NewOutput("text", &stdout, &stderr)

	out.Print(&ClipListResult{
		Username: "alice",
		Clips: []client.Clip{
			{Title: "demo-1", Size: 2 << 20, CreatedAt: time.Now()},
			{Title: "demo-2", Size: 512, CreatedAt: time.Now()},
		},
	})

	assert.Contains(t, stdout.String(), "@alice (2 clips):")
	assert.Contains(t, stdout.String(), "demo-1")
	assert.Contains(t, stdout.String(), "2.0MB")
	assert.Contains(t, stdout.String(), "512B")
	assert.Empty(t, stderr.String())
}

func TestOutputAvailability(t *testing.T) {
	tests := []struct {
		in   client.Availability
		want string
	}{
		{client.Availability{Name: "alice", Available: true, Confirmed: true}, "@alice is available\n"},
		{client.Availability{Name: "alice", Available: true}, "@alice looks available (server unreachable, not confirmed)\n"},
		{client.Availability{Name: "dashboard", Reason: "reserved", Confirmed: true}, "@dashboard is not available: reserved\n"},
	}

	for _, tt := range tests {
		var stdout bytes.Buffer
		NewOutput("text", &stdout, &bytes.Buffer{}).Print(&tt.in)
		assert.Equal(t, tt.want, stdout.String())
	}
}

func TestOutputJSONError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	out := NewOutput("json", &stdout, &stderr)

	out.PrintError(fmt.Errorf("claim: %w", model.ErrUsernameReserved))

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(stderr.Bytes(), &resp))
	assert.Equal(t, "USERNAME_RESERVED", resp.Error.Code)
	assert.Equal(t, "claim: username is reserved", resp.Error.Message)
	assert.Empty(t, stdout.String())
}

func TestOutputTextError(t *testing.T) {
	var stderr bytes.Buffer
	NewOutput("text", &bytes.Buffer{}, &stderr).PrintError(errNotSignedIn)
	assert.Equal(t, "Error: not signed in: run `vzee login` first\n", stderr.String())
}
