package playback

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

const blobScheme = "blob:"

// ObjectURLs maps session-scoped blob: URLs to local files. Every URL it
// hands out must be revoked by whoever holds it.
type ObjectURLs struct {
	mu   sync.Mutex
	urls map[string]string
}

// NewObjectURLs creates an empty registry
func NewObjectURLs() *ObjectURLs {
	return &ObjectURLs{urls: make(map[string]string)}
}

// Create registers path and returns a fresh blob: URL for it
func (o *ObjectURLs) Create(path string) string {
	url := blobScheme + uuid.NewString()
	o.mu.Lock()
	o.urls[url] = path
	o.mu.Unlock()
	return url
}

// Revoke releases url. Revoking an unknown URL is a no-op.
func (o *ObjectURLs) Revoke(url string) {
	o.mu.Lock()
	delete(o.urls, url)
	o.mu.Unlock()
}

// Resolve returns the file behind url
func (o *ObjectURLs) Resolve(url string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	path, ok := o.urls[url]
	return path, ok
}

// Len returns the number of live URLs
func (o *ObjectURLs) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.urls)
}

// IsObjectURL reports whether url is a blob: URL
func IsObjectURL(url string) bool {
	return strings.HasPrefix(url, blobScheme)
}
