package playback

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzeefun/vzee/internal/testutil"
)

// fakeOpener serves fixed content and can fail the first N opens
type fakeOpener struct {
	mu      sync.Mutex
	content string
	fail    []error
	opened  []string
	streams []*trackedStream
}

func (f *fakeOpener) Open(_ context.Context, url string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, url)
	if len(f.fail) > 0 {
		err := f.fail[0]
		f.fail = f.fail[1:]
		return nil, err
	}
	s := &trackedStream{Reader: strings.NewReader(f.content)}
	f.streams = append(f.streams, s)
	return s, nil
}

type trackedStream struct {
	io.Reader
	closed bool
}

func (t *trackedStream) Close() error {
	t.closed = true
	return nil
}

// flakyStream fails after n bytes
type flakyStream struct {
	data []byte
	n    int
}

func (f *flakyStream) Read(b []byte) (int, error) {
	if f.n == 0 {
		return 0, errors.New("connection reset")
	}
	k := copy(b, f.data[:f.n])
	f.data, f.n = f.data[k:], f.n-k
	return k, nil
}

func (f *flakyStream) Close() error { return nil }

func newPlayer(opener Opener) (*Player, *ObjectURLs) {
	urls := NewObjectURLs()
	return NewPlayer(opener, urls, testutil.NopLogger()), urls
}

func writeOriginal(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp3")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "playing", Playing.String())
	assert.Equal(t, "state(42)", State(42).String())
	assert.Equal(t, "close", EventClose.String())
	assert.Equal(t, "event(9)", Event(9).String())
	assert.Equal(t, "event(-1)", Event(-1).String())
}

func TestPlayRequiresSource(t *testing.T) {
	p, _ := newPlayer(&fakeOpener{})
	assert.ErrorIs(t, p.Play(context.Background()), ErrNoSource)
	assert.Equal(t, Idle, p.State())
}

func TestTransitions(t *testing.T) {
	ctx := context.Background()
	p, _ := newPlayer(&fakeOpener{content: "audio"})
	p.Load(Source{URL: "https://vzee.test/media/a"})

	require.NoError(t, p.Play(ctx))
	assert.Equal(t, Playing, p.State())

	require.NoError(t, p.Pause())
	assert.Equal(t, Paused, p.State())
	assert.ErrorIs(t, p.Pause(), ErrInvalidTransition)

	require.NoError(t, p.Play(ctx))
	assert.Equal(t, Playing, p.State())

	require.NoError(t, p.Finish())
	assert.Equal(t, Ended, p.State())
	assert.Zero(t, p.Position())
	assert.ErrorIs(t, p.Finish(), ErrInvalidTransition)

	// Replay from Ended opens again
	require.NoError(t, p.Play(ctx))
	assert.Equal(t, Playing, p.State())
}

func TestInvalidEventsInIdle(t *testing.T) {
	p, _ := newPlayer(&fakeOpener{})
	p.Load(Source{URL: "https://vzee.test/media/a"})

	assert.ErrorIs(t, p.Pause(), ErrInvalidTransition)
	assert.ErrorIs(t, p.Finish(), ErrInvalidTransition)
	assert.ErrorIs(t, p.Fail(context.Background(), errors.New("boom")), ErrInvalidTransition)
	assert.Equal(t, Idle, p.State())
}

func TestFailedStartWithoutOriginalStaysErrored(t *testing.T) {
	opener := &fakeOpener{fail: []error{ErrStaleURL}}
	p, _ := newPlayer(opener)
	p.Load(Source{URL: "https://vzee.test/media/expired"})

	err := p.Play(context.Background())
	assert.ErrorIs(t, err, ErrStaleURL)
	assert.Equal(t, Errored, p.State())
	assert.Zero(t, p.Recoveries())
	assert.ErrorIs(t, p.Err(), ErrStaleURL)
}

func TestExpiredURLRecoversFromOriginal(t *testing.T) {
	expired := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer expired.Close()

	data := testutil.MP3(4096)
	original := writeOriginal(t, data)

	urls := NewObjectURLs()
	p := NewPlayer(NewStreamOpener(urls), urls, testutil.NopLogger())
	p.Load(Source{URL: expired.URL + "/media/clips/x?X-Amz-Expires=1", Original: original})

	var out bytes.Buffer
	require.NoError(t, p.Stream(context.Background(), &out))

	assert.Equal(t, data, out.Bytes())
	assert.Equal(t, 1, p.Recoveries())
	assert.Equal(t, Ended, p.State())
	assert.True(t, IsObjectURL(p.URL()))
	assert.Equal(t, 1, urls.Len())

	require.NoError(t, p.Close())
	assert.Zero(t, urls.Len())
}

func TestRecoveryReachesPlaying(t *testing.T) {
	opener := &fakeOpener{content: "audio", fail: []error{ErrStaleURL}}
	p, urls := newPlayer(opener)
	p.Load(Source{URL: "blob:revoked", Original: "/clips/demo.mp3"})

	require.NoError(t, p.Play(context.Background()))
	assert.Equal(t, Playing, p.State())
	assert.Equal(t, 1, p.Recoveries())
	require.Len(t, opener.opened, 2)
	assert.Equal(t, "blob:revoked", opener.opened[0])
	path, ok := urls.Resolve(opener.opened[1])
	assert.True(t, ok)
	assert.Equal(t, "/clips/demo.mp3", path)
}

func TestOneRecoveryPerErrorCycle(t *testing.T) {
	opener := &fakeOpener{fail: []error{ErrStaleURL, ErrStaleURL, ErrStaleURL}}
	p, urls := newPlayer(opener)
	p.Load(Source{URL: "blob:revoked", Original: "/gone.mp3"})

	assert.ErrorIs(t, p.Play(context.Background()), ErrStaleURL)
	assert.Equal(t, Errored, p.State())
	assert.Equal(t, 1, p.Recoveries())
	assert.Len(t, opener.opened, 2)
	assert.Equal(t, 1, urls.Len())
}

func TestErrorWhilePlayingRecovers(t *testing.T) {
	opener := &fakeOpener{content: "audio"}
	p, urls := newPlayer(opener)
	first := urls.Create("/clips/demo.mp3")
	p.Load(Source{URL: first, Original: "/clips/demo.mp3"})

	require.NoError(t, p.Play(context.Background()))
	require.NoError(t, p.Fail(context.Background(), errors.New("decode error")))

	assert.Equal(t, Playing, p.State())
	assert.Equal(t, 1, p.Recoveries())
	assert.True(t, opener.streams[0].closed)
	_, ok := urls.Resolve(first)
	assert.False(t, ok, "old object url revoked")
	assert.Equal(t, 1, urls.Len())
}

func TestSwitchingSourceReleasesPrevious(t *testing.T) {
	opener := &fakeOpener{content: "audio"}
	p, urls := newPlayer(opener)

	first := urls.Create("/clips/one.mp3")
	p.Load(Source{URL: first})
	require.NoError(t, p.Play(context.Background()))

	p.Load(Source{URL: "https://vzee.test/media/two"})
	assert.Equal(t, Idle, p.State())
	assert.True(t, opener.streams[0].closed)
	assert.Zero(t, urls.Len())
}

func TestStreamRecoversMidStream(t *testing.T) {
	data := []byte("0123456789abcdef")
	opener := &sequenceOpener{streams: []io.ReadCloser{
		&flakyStream{data: data, n: 6},
		io.NopCloser(bytes.NewReader(data)),
	}}
	p, _ := newPlayer(opener)
	p.Load(Source{URL: "https://vzee.test/media/a", Original: "/clips/a.mp3"})

	var out bytes.Buffer
	require.NoError(t, p.Stream(context.Background(), &out))
	assert.Equal(t, data, out.Bytes())
	assert.Equal(t, Ended, p.State())
	assert.Equal(t, 1, p.Recoveries())
}

func TestStreamGivesUpWithoutProgress(t *testing.T) {
	data := []byte("0123456789")
	opener := &sequenceOpener{streams: []io.ReadCloser{
		&flakyStream{data: data, n: 4},
		&flakyStream{data: data, n: 2},
	}}
	p, _ := newPlayer(opener)
	p.Load(Source{URL: "https://vzee.test/media/a", Original: "/clips/a.mp3"})

	var out bytes.Buffer
	require.Error(t, p.Stream(context.Background(), &out))
	assert.Equal(t, Errored, p.State())
	assert.Equal(t, "0123", out.String())
}

type sequenceOpener struct {
	streams []io.ReadCloser
}

func (s *sequenceOpener) Open(context.Context, string) (io.ReadCloser, error) {
	if len(s.streams) == 0 {
		return nil, ErrStaleURL
	}
	next := s.streams[0]
	s.streams = s.streams[1:]
	return next, nil
}

func TestStreamOpener(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("audio"))
		case "/gone":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	urls := NewObjectURLs()
	opener := NewStreamOpener(urls)
	ctx := context.Background()

	rc, err := opener.Open(ctx, srv.URL+"/ok")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "audio", string(body))

	_, err = opener.Open(ctx, srv.URL+"/gone")
	assert.ErrorIs(t, err, ErrStaleURL)

	_, err = opener.Open(ctx, srv.URL+"/broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStaleURL)

	url := urls.Create(writeOriginal(t, []byte("local")))
	rc, err = opener.Open(ctx, url)
	require.NoError(t, err)
	body, _ = io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "local", string(body))

	urls.Revoke(url)
	_, err = opener.Open(ctx, url)
	assert.ErrorIs(t, err, ErrStaleURL)

	_, err = opener.Open(ctx, "ftp://example.com/a.mp3")
	assert.ErrorContains(t, err, "unsupported")
}
