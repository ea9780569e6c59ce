// Package blob stores uploaded audio bytes apart from clip metadata.
package blob

import (
	"context"
	"io"
	"net/url"
	"time"
)

// Object is an open blob. Callers must Close it.
type Object struct {
	io.ReadCloser
	ContentType string
	Size        int64
}

// Store holds clip audio by object key
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Open returns model.ErrObjectNotFound for unknown keys
	Open(ctx context.Context, key string) (*Object, error)
	// Delete is idempotent
	Delete(ctx context.Context, key string) error
}

// Presigner is implemented by stores that can hand out direct, time-limited
// download links. The media handler redirects to these when available.
type Presigner interface {
	PresignGet(ctx context.Context, key string, expiry time.Duration) (*url.URL, error)
}
