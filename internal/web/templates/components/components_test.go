package components

import (
	"bytes"
	"context"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzeefun/vzee/internal/model"
)

func renderDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewBufferString(html))
	require.NoError(t, err)
	return doc
}

func testClip() *model.Clip {
	return &model.Clip{
		OwnerUsername: "alice",
		Title:         "demo-1",
		AudioURL:      "https://blob.vzee.fun/audio/alice/demo-1.mp3",
		ContentType:   "audio/mpeg",
	}
}

func TestClipRowOwnerGetsDeleteForm(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ClipRow(testClip(), "https://vzee.fun", true).Render(context.Background(), &buf))
	doc := renderDoc(t, buf.String())

	row := doc.Find("li.clip#clip-demo-1")
	require.Equal(t, 1, row.Length())
	href, _ := row.Find("a.clip-title").Attr("href")
	assert.Equal(t, "/@alice/demo-1", href)
	action, _ := row.Find("form").Attr("action")
	assert.Equal(t, "/clips/demo-1/delete", action)
	share, _ := row.Find("input.share-url").Attr("value")
	assert.Equal(t, "https://vzee.fun/@alice/demo-1", share)
}

func TestClipRowVisitorHasNoDeleteForm(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ClipRow(testClip(), "https://vzee.fun", false).Render(context.Background(), &buf))

	assert.NotContains(t, buf.String(), "Delete")
}

func TestClipRowRejectsScriptAudioURL(t *testing.T) {
	clip := testClip()
	clip.AudioURL = "javascript:alert(1)"

	var buf bytes.Buffer
	require.NoError(t, ClipRow(clip, "https://vzee.fun", false).Render(context.Background(), &buf))

	assert.NotContains(t, buf.String(), "javascript:")
}

func TestClipListEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ClipList(nil, "https://vzee.fun", false).Render(context.Background(), &buf))
	doc := renderDoc(t, buf.String())

	assert.Equal(t, 1, doc.Find("ul#clip-list").Length())
	assert.Equal(t, "No clips yet.", doc.Find("#clip-list-empty").Text())
}

func TestAvailabilityMessages(t *testing.T) {
	tests := []struct {
		availability model.Availability
		class        string
		text         string
	}{
		{model.Availability{Name: "bob", Available: true}, "available", "@bob is available"},
		{model.Availability{Name: "bob", Reason: "taken"}, "unavailable", "@bob is already taken"},
		{model.Availability{Name: "terms", Reason: "reserved"}, "unavailable", "@terms is reserved"},
		{model.Availability{Name: "x", Reason: "must be at least 3 characters"}, "unavailable", "must be at least 3 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Availability(tt.availability).Render(context.Background(), &buf))
			doc := renderDoc(t, buf.String())

			span := doc.Find("#username-availability")
			assert.True(t, span.HasClass(tt.class))
			assert.Equal(t, tt.text, span.Text())
		})
	}
}
