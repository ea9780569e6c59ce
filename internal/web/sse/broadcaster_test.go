package sse

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/testutil"
)

func TestWrapForOOBSwap(t *testing.T) {
	assert.Equal(t,
		`<div id="profile-notice" hx-swap-oob="true"><p>Hello</p></div>`,
		WrapForOOBSwap("profile-notice", "<p>Hello</p>"))
	assert.Equal(t,
		`<div id="status" hx-swap-oob="true"></div>`,
		WrapForOOBSwap("status", ""))
}

func TestRenderer_ClipAdded(t *testing.T) {
	r := NewRenderer("https://vzee.fun")
	clip := &model.Clip{OwnerUsername: "alice", Title: "demo-1", AudioURL: "https://vzee.fun/media/clips/1"}

	out, err := r.RenderEvent(context.Background(), model.Event{
		Type:     model.EventClipAdded,
		Username: "alice",
		Title:    "demo-1",
		Payload:  clip,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "clip-added", out[0].EventName)
	assert.Contains(t, out[0].HTML, `hx-swap-oob="afterbegin"`)
	assert.Contains(t, out[0].HTML, `id="clip-demo-1"`)
	assert.NotContains(t, out[0].HTML, "Delete")
}

func TestRenderer_ClipAddedWithoutPayload(t *testing.T) {
	_, err := NewRenderer("").RenderEvent(context.Background(), model.Event{Type: model.EventClipAdded})
	assert.Error(t, err)
}

func TestRenderer_ClipRemoved(t *testing.T) {
	out, err := NewRenderer("").RenderEvent(context.Background(), model.Event{
		Type:     model.EventClipRemoved,
		Username: "alice",
		Title:    "demo-1",
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, `<li id="clip-demo-1" hx-swap-oob="delete"></li>`, out[0].HTML)
}

func TestRenderer_UsernameChanged(t *testing.T) {
	out, err := NewRenderer("").RenderEvent(context.Background(), model.Event{
		Type:     model.EventUsernameChanged,
		Username: "alice",
		Payload:  model.UsernameChangedPayload{OldUsername: "alice", NewUsername: "alice2"},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "username-changed", out[0].EventName)
	assert.Contains(t, out[0].HTML, `href="/@alice2"`)
}

func TestBroadcaster_PublishReachesWatchers(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()
	broadcaster := NewBroadcaster(manager, "https://vzee.fun", testutil.NopLogger())

	hub := manager.GetOrCreateHub("alice")
	client := NewClient(hub, "viewer1")
	hub.Register(client)

	broadcaster.Publish(context.Background(), model.Event{
		Type:     model.EventClipRemoved,
		Username: "alice",
		Title:    "demo-1",
	})

	select {
	case msg := <-client.send:
		s := string(msg)
		assert.True(t, strings.HasPrefix(s, "event: clip-removed\n"))
		assert.Contains(t, s, `hx-swap-oob="delete"`)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestBroadcaster_PublishWithoutWatchersIsNoop(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	broadcaster := NewBroadcaster(manager, "", testutil.NopLogger())

	broadcaster.Publish(context.Background(), model.Event{Type: model.EventClipRemoved, Username: "bob"})
	assert.Nil(t, manager.GetHub("bob"))
}
