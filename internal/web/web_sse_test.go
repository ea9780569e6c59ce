package web_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzeefun/vzee/internal/model"
)

// TestSSE_EndpointHeaders verifies the SSE endpoint returns correct headers
func TestSSE_EndpointHeaders(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs("alice@example.com", "alice")

	// Anyone may watch a public profile
	visitor := ts.withSameApp()
	req := httptest.NewRequest(http.MethodGet, "/alice/events", nil)

	// Use a context with timeout since SSE is a long-running connection
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	visitor.handler.ServeHTTP(rr, req)

	assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rr.Header().Get("Cache-Control"))
	assert.Equal(t, "no", rr.Header().Get("X-Accel-Buffering"))
	assert.Contains(t, rr.Body.String(), "event: connected")
	assert.Contains(t, rr.Body.String(), `data: {"status":"connected"}`)
}

// TestSSE_UnknownProfile verifies no hub is created for missing profiles
func TestSSE_UnknownProfile(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/nobody/events")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Nil(t, ts.app.HubManager.GetHub("nobody"))
}

// TestSSE_HubCreatedOnConnect verifies hubs are created lazily per username
func TestSSE_HubCreatedOnConnect(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs("alice@example.com", "alice")

	assert.Nil(t, ts.app.HubManager.GetHub("alice"), "Hub should not exist before SSE connection")

	req := httptest.NewRequest(http.MethodGet, "/@Alice/events", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req.WithContext(ctx))

	assert.NotNil(t, ts.app.HubManager.GetHub("alice"), "Hub should exist after SSE connection")
}

// TestSSE_ClipEventsReachWatchers drives a live stream: an upload and a
// delete by the owner show up as out-of-band swaps for a watcher
func TestSSE_ClipEventsReachWatchers(t *testing.T) {
	owner := newWebTestServer(t)
	owner.signInAs("alice@example.com", "alice")

	server := httptest.NewServer(owner.handler)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/alice/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan string, 16)
	go readEvents(resp, events)

	assert.Equal(t, "connected", nextEvent(t, events).name)
	require.Eventually(t, func() bool {
		hub := owner.app.HubManager.GetHub("alice")
		return hub != nil && hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	owner.uploadMP3("demo-1")
	added := nextEvent(t, events)
	assert.Equal(t, "clip-added", added.name)
	assert.Contains(t, added.data, `hx-swap-oob="afterbegin"`)
	assert.Contains(t, added.data, `id="clip-demo-1"`)
	assert.Contains(t, added.data, `id="clip-list-empty" hx-swap-oob="delete"`)

	rr := owner.post("/clips/demo-1/delete", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	removed := nextEvent(t, events)
	assert.Equal(t, "clip-removed", removed.name)
	assert.Contains(t, removed.data, `id="clip-demo-1" hx-swap-oob="delete"`)
}

// TestSSE_RenameRedirectsWatchers verifies watchers of the old name are
// pointed at the new profile
func TestSSE_RenameRedirectsWatchers(t *testing.T) {
	owner := newWebTestServer(t)
	owner.signInAs("alice@example.com", "alice")

	server := httptest.NewServer(owner.handler)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/@alice/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	events := make(chan string, 16)
	go readEvents(resp, events)
	assert.Equal(t, "connected", nextEvent(t, events).name)
	require.Eventually(t, func() bool {
		hub := owner.app.HubManager.GetHub("alice")
		return hub != nil && hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	_, err = owner.app.IdentityService.Rename(ctx, mustUserID(t, owner), "alice2")
	require.NoError(t, err)

	changed := nextEvent(t, events)
	assert.Equal(t, "username-changed", changed.name)
	assert.Contains(t, changed.data, `id="profile-notice"`)
	assert.Contains(t, changed.data, "/@alice2")
}

type sseEvent struct {
	name string
	data string
}

// readEvents forwards raw event blocks until the stream ends
func readEvents(resp *http.Response, out chan<- string) {
	defer close(out)
	reader := bufio.NewReader(resp.Body)
	var block strings.Builder
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		if line == "\n" {
			if block.Len() > 0 {
				out <- block.String()
				block.Reset()
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		block.WriteString(line)
	}
}

func nextEvent(t *testing.T, events <-chan string) sseEvent {
	t.Helper()
	select {
	case block, ok := <-events:
		require.True(t, ok, "stream closed")
		var ev sseEvent
		var data []string
		for _, line := range strings.Split(strings.TrimSuffix(block, "\n"), "\n") {
			switch {
			case strings.HasPrefix(line, "event: "):
				ev.name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = append(data, strings.TrimPrefix(line, "data: "))
			}
		}
		ev.data = strings.Join(data, "\n")
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for SSE event")
		return sseEvent{}
	}
}

func mustUserID(t *testing.T, ts *webTestServer) model.UserID {
	t.Helper()
	cookie, ok := ts.cookies.cookies["session"]
	require.True(t, ok)
	session, err := ts.app.AuthService.ValidateSession(cookie.Value)
	require.NoError(t, err)
	return session.UserID
}
