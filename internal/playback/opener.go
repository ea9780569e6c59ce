package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// ErrStaleURL means a source URL no longer resolves to audio: a revoked
// object URL, a missing file or an expired remote link.
var ErrStaleURL = errors.New("stale audio url")

// Opener turns a playable URL into an audio stream
type Opener interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// StreamOpener opens blob: URLs from a registry and http(s) URLs over HTTP
type StreamOpener struct {
	URLs *ObjectURLs
	HTTP *http.Client
}

// NewStreamOpener creates an opener over urls
func NewStreamOpener(urls *ObjectURLs) *StreamOpener {
	return &StreamOpener{
		URLs: urls,
		HTTP: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Open implements Opener
func (o *StreamOpener) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	switch {
	case IsObjectURL(url):
		path, ok := o.URLs.Resolve(url)
		if !ok {
			return nil, fmt.Errorf("%w: %s revoked", ErrStaleURL, url)
		}
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrStaleURL, err)
		}
		return f, err

	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := o.HTTP.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch audio: %w", err)
		}
		switch resp.StatusCode {
		case http.StatusOK:
			return resp.Body, nil
		case http.StatusForbidden, http.StatusNotFound, http.StatusGone:
			_ = resp.Body.Close()
			return nil, fmt.Errorf("%w: HTTP %d", ErrStaleURL, resp.StatusCode)
		default:
			_ = resp.Body.Close()
			return nil, fmt.Errorf("fetch audio: HTTP %d", resp.StatusCode)
		}

	default:
		return nil, fmt.Errorf("unsupported audio url %q", url)
	}
}
