package web_test

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzeefun/vzee/internal/testutil"
)

func TestProfilePage(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs("alice@example.com", "alice")
	ts.uploadMP3("older")
	ts.app.MockClock.Advance(time.Minute)
	ts.uploadMP3("newer")

	visitor := ts.withSameApp()

	for _, path := range []string{"/@alice", "/alice", "/@ALICE"} {
		t.Run(path, func(t *testing.T) {
			rr := visitor.get(path)
			require.Equal(t, http.StatusOK, rr.Code)

			doc := parseHTML(rr.Body)
			assertContainsText(t, doc, "h1.username", "@alice")
			assertContainsElement(t, doc, "main[sse-connect='/alice/events']")

			// Newest first
			rows := doc.Find("#clip-list li.clip")
			require.Equal(t, 2, rows.Length())
			assert.Equal(t, "clip-newer", rows.First().AttrOr("id", ""))
			assert.Equal(t, "clip-older", rows.Last().AttrOr("id", ""))

			// Visitors get no delete buttons
			assertNotContainsElement(t, doc, "form[action$='/delete']")
		})
	}
}

func TestProfilePageOwnerSeesDelete(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs("alice@example.com", "alice")
	ts.uploadMP3("demo-1")

	doc := parseHTML(ts.get("/@alice").Body)
	assertContainsElement(t, doc, "form[action='/clips/demo-1/delete']")
}

func TestProfileNotFound(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/@nobody")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "main", "@nobody")
}

func TestClipPage(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs("alice@example.com", "alice")
	ts.uploadMP3("demo-1")

	visitor := ts.withSameApp()
	for _, path := range []string{"/@alice/demo-1", "/alice/demo-1", "/@alice/DEMO-1"} {
		t.Run(path, func(t *testing.T) {
			rr := visitor.get(path)
			require.Equal(t, http.StatusOK, rr.Code)

			doc := parseHTML(rr.Body)
			player := doc.Find("audio#player")
			require.Equal(t, 1, player.Length())
			_, autoplay := player.Attr("autoplay")
			assert.True(t, autoplay)

			src := player.AttrOr("src", "")
			assert.True(t, strings.HasPrefix(src, "https://vzee.test/media/clips/"), src)
			assert.Equal(t, "audio/mpeg", player.AttrOr("data-content-type", ""))
		})
	}
}

func TestClipPageNotFound(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs("alice@example.com", "alice")
	ts.uploadMP3("demo-1")

	other := ts.withSameApp()
	other.signInAs("bob@example.com", "bob")

	// Another owner's title never resolves
	rr := ts.get("/@bob/demo-1")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "main", "no clip called demo-1")
}

func TestMediaStreamsAudio(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs("alice@example.com", "alice")
	ts.uploadMP3("demo-1")

	clip, err := ts.app.DirectoryService.Lookup(t.Context(), "alice", "demo-1")
	require.NoError(t, err)

	rr := ts.get("/media/" + clip.ObjectKey)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "audio/mpeg", rr.Header().Get("Content-Type"))
	assert.Equal(t, "2048", rr.Header().Get("Content-Length"))

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Equal(t, testutil.MP3(2048), body)
}

func TestMediaNotFound(t *testing.T) {
	ts := newWebTestServer(t)

	assert.Equal(t, http.StatusNotFound, ts.get("/media/clips/missing").Code)
	// Only clip objects are served
	assert.Equal(t, http.StatusNotFound, ts.get("/media/other/thing").Code)
}

func TestLegalPages(t *testing.T) {
	ts := newWebTestServer(t)

	pages := map[string]string{
		"/terms":         "Terms and Conditions",
		"/privacy":       "Privacy Policy",
		"/disclaimer":    "Disclaimer",
		"/cookie-policy": "Cookie Policy",
		"/copyright":     "Copyright",
		"/contact":       "Contact",
	}

	for path, heading := range pages {
		t.Run(path, func(t *testing.T) {
			rr := ts.get(path)
			require.Equal(t, http.StatusOK, rr.Code)

			doc := parseHTML(rr.Body)
			assertContainsText(t, doc, "h1", heading)
			assertContainsElement(t, doc, "footer a[href='"+path+"']")
		})
	}
}
