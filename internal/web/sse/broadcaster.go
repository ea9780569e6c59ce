package sse

import (
	"context"
	"log/slog"

	"github.com/vzeefun/vzee/internal/events"
	"github.com/vzeefun/vzee/internal/model"
)

// Broadcaster pushes profile events to the pages watching them
type Broadcaster struct {
	hubManager *HubManager
	renderer   *Renderer
	logger     *slog.Logger
}

var _ events.Publisher = (*Broadcaster)(nil)

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, baseURL string, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		renderer:   NewRenderer(baseURL),
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Publish renders event and sends it to the profile's watchers, if any
func (b *Broadcaster) Publish(ctx context.Context, event model.Event) {
	hub := b.hubManager.GetHub(event.Username)
	if hub == nil {
		return
	}

	fragments, err := b.renderer.RenderEvent(ctx, event)
	if err != nil {
		b.logger.Error("sse failed to render event",
			slog.String("username", event.Username),
			slog.String("event", string(event.Type)),
			slog.Any("error", err))
		return
	}

	for _, f := range fragments {
		hub.BroadcastEvent(f.EventName, f.HTML)
	}
}
