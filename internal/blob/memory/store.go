package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/vzeefun/vzee/internal/blob"
	"github.com/vzeefun/vzee/internal/model"
)

type object struct {
	data        []byte
	contentType string
}

// Store is an in-memory blob store
type Store struct {
	mu      sync.RWMutex
	objects map[string]object
}

// New creates a new in-memory blob store
func New() *Store {
	return &Store{objects: make(map[string]object)}
}

var _ blob.Store = (*Store)(nil)

// Put reads r to the end; size is advisory here
func (s *Store) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = object{data: data, contentType: contentType}
	return nil
}

func (s *Store) Open(_ context.Context, key string) (*blob.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, model.ErrObjectNotFound
	}
	return &blob.Object{
		ReadCloser:  io.NopCloser(bytes.NewReader(obj.data)),
		ContentType: obj.contentType,
		Size:        int64(len(obj.data)),
	}, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Len reports how many objects are stored
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
