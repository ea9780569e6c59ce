// Package events carries profile changes from services to live listeners.
package events

import (
	"context"
	"sync"

	"github.com/vzeefun/vzee/internal/model"
)

// Publisher receives profile events after a change is committed
type Publisher interface {
	Publish(ctx context.Context, event model.Event)
}

// Nop discards events
type Nop struct{}

func (Nop) Publish(context.Context, model.Event) {}

// Recorder keeps published events in memory (for testing)
type Recorder struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *Recorder) Publish(_ context.Context, event model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of everything published so far
func (r *Recorder) Events() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Event, len(r.events))
	copy(out, r.events)
	return out
}
