package web_test

import (
	"bytes"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzeefun/vzee/internal/testutil"
)

func TestClaimUsername(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signIn("alice@example.com")

	// Raw input is normalized before validation
	rr := ts.post("/username", url.Values{"username": {" Alice! "}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".flash-success", "@alice")
	assertContainsText(t, doc, "header .nav-profile", "@alice")
	assertContainsElement(t, doc, "form.upload-form[action='/clips']")
	assertContainsElement(t, doc, "form[action='/username/rename']")
	assertContainsElement(t, doc, "#clip-list-empty")
}

func TestClaimUsernameErrors(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs("alice@example.com", "alice")

	other := ts.withSameApp()
	other.signIn("bob@example.com")

	tests := []struct {
		name     string
		username string
		status   int
		message  string
	}{
		{"too short", "ab", http.StatusUnprocessableEntity, "at least 3 characters"},
		{"too long", "abcdefghijklmnopqrstuvwxyz", http.StatusUnprocessableEntity, "at most 20 characters"},
		{"taken", "alice", http.StatusConflict, "already taken"},
		{"reserved", "dashboard", http.StatusUnprocessableEntity, "reserved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := other.post("/username", url.Values{"username": {tt.username}})
			assert.Equal(t, tt.status, rr.Code)

			doc := parseHTML(rr.Body)
			assertContainsText(t, doc, ".form-error", tt.message)
			// The form is shown again with the input
			assertContainsElement(t, doc, "form[action='/username']")
		})
	}
}

func TestClaimTwice(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs("alice@example.com", "alice")

	rr := ts.post("/username", url.Values{"username": {"another"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".form-error", "already have a username")
}

func TestCheckUsernameFragment(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs("alice@example.com", "alice")

	tests := []struct {
		query string
		class string
		text  string
	}{
		{"newname", "available", "@newname is available"},
		{"ALICE", "unavailable", "@alice is already taken"},
		{"terms", "unavailable", "@terms is reserved"},
		{"ab", "unavailable", "at least 3 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rr := ts.get("/username/check?username=" + url.QueryEscape(tt.query))
			require.Equal(t, http.StatusOK, rr.Code)

			doc := parseHTML(rr.Body)
			assertContainsElement(t, doc, "#username-availability."+tt.class)
			assertContainsText(t, doc, "#username-availability", tt.text)
		})
	}
}

func TestUploadClip(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs("alice@example.com", "alice")

	rr := ts.upload("Demo-1", "audio/mpeg", testutil.MP3(4096))
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".flash-success", "Uploaded demo-1")
	assertContainsElement(t, doc, "#clip-list li#clip-demo-1")
	assertContainsElement(t, doc, "form[action='/clips/demo-1/delete']")
	assertNotContainsElement(t, doc, "#clip-list-empty")

	share, _ := doc.Find("#clip-demo-1 input.share-url").Attr("value")
	assert.Equal(t, "https://vzee.test/@alice/demo-1", share)
}

func TestUploadRejections(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs("alice@example.com", "alice")
	ts.uploadMP3("taken")

	tests := []struct {
		name        string
		title       string
		contentType string
		data        []byte
		status      int
		message     string
	}{
		{"not audio", "picture", "image/png", testutil.PNG(), http.StatusUnprocessableEntity, "please upload an audio file"},
		{"disguised", "sneaky", "audio/mpeg", testutil.PNG(), http.StatusUnprocessableEntity, "please upload an audio file"},
		{"empty", "nothing", "audio/mpeg", nil, http.StatusUnprocessableEntity, "file is empty"},
		{"bad title", "a b", "audio/mpeg", testutil.MP3(64), http.StatusUnprocessableEntity, "invalid title"},
		{"duplicate", "taken", "audio/mpeg", testutil.MP3(64), http.StatusConflict, "already have a clip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.upload(tt.title, tt.contentType, tt.data)
			assert.Equal(t, tt.status, rr.Code)

			doc := parseHTML(rr.Body)
			assertContainsText(t, doc, ".form-error", tt.message)
		})
	}

	// Only the first clip made it to blob storage
	assert.Equal(t, 1, ts.app.BlobStore.Len())
}

func TestUploadTooLarge(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs("alice@example.com", "alice")

	big := append(testutil.MP3(64), bytes.Repeat([]byte{0}, 11<<20)...)
	rr := ts.upload("huge", "audio/mpeg", big)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".form-error", "under 10MB")
	assert.Equal(t, 0, ts.app.BlobStore.Len())
}

func TestUploadWithoutUsername(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signIn("alice@example.com")

	rr := ts.upload("demo", "audio/mpeg", testutil.MP3(64))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".form-error", "Claim a username first")
}

func TestDeleteClip(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs("alice@example.com", "alice")
	ts.uploadMP3("demo-1")

	rr := ts.post("/clips/demo-1/delete", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".flash-success", "Deleted demo-1")
	assertNotContainsElement(t, doc, "#clip-demo-1")
	assert.Equal(t, 0, ts.app.BlobStore.Len())

	// Deleting again reports the missing clip
	rr = ts.post("/clips/demo-1/delete", nil)
	rr = ts.followRedirect(rr)
	doc = parseHTML(rr.Body)
	assertContainsText(t, doc, ".flash-error", "Clip not found")
}

func TestRenameUsername(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs("alice@example.com", "alice")
	ts.uploadMP3("demo-1")

	rr := ts.post("/username/rename", url.Values{"username": {"alice2"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".flash-success", "@alice2")
	assertContainsElement(t, doc, "form[action='/clips/demo-1/delete']")

	// The share link moved with the username
	assert.Equal(t, http.StatusOK, ts.get("/@alice2/demo-1").Code)
	assert.Equal(t, http.StatusNotFound, ts.get("/@alice/demo-1").Code)
}

func TestRenameToTakenUsername(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs("alice@example.com", "alice")

	other := ts.withSameApp()
	other.signInAs("bob@example.com", "bob")

	rr := ts.post("/username/rename", url.Values{"username": {"bob"}})
	assert.Equal(t, http.StatusConflict, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".form-error", "already taken")
}
