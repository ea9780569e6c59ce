package sse

import (
	"bytes"
	"context"
	"fmt"
	"html"

	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/web/templates/components"
)

// Renderer converts model events to HTML fragments for SSE
type Renderer struct {
	baseURL string
}

// NewRenderer creates a new Renderer
func NewRenderer(baseURL string) *Renderer {
	return &Renderer{baseURL: baseURL}
}

// WrapForOOBSwap wraps HTML in a div with hx-swap-oob for out-of-band swaps
func WrapForOOBSwap(id, html string) string {
	return `<div id="` + id + `" hx-swap-oob="true">` + html + `</div>`
}

// EventData represents SSE event data
type EventData struct {
	EventName string
	HTML      string
}

// RenderEvent converts a profile event to the fragments watchers receive
func (r *Renderer) RenderEvent(ctx context.Context, event model.Event) ([]EventData, error) {
	switch event.Type {
	case model.EventClipAdded:
		clip, ok := event.Payload.(*model.Clip)
		if !ok {
			return nil, fmt.Errorf("clip_added event without clip payload")
		}
		var buf bytes.Buffer
		if err := components.ClipRow(clip, r.baseURL, false).Render(ctx, &buf); err != nil {
			return nil, err
		}
		return []EventData{{
			EventName: "clip-added",
			HTML: `<ul id="clip-list" hx-swap-oob="afterbegin">` + buf.String() + `</ul>` +
				`<p id="clip-list-empty" hx-swap-oob="delete"></p>`,
		}}, nil

	case model.EventClipRemoved:
		id := html.EscapeString(components.ClipRowID(event.Title))
		return []EventData{{
			EventName: "clip-removed",
			HTML:      `<li id="` + id + `" hx-swap-oob="delete"></li>`,
		}}, nil

	case model.EventUsernameChanged:
		payload, ok := event.Payload.(model.UsernameChangedPayload)
		if !ok {
			return nil, fmt.Errorf("username_changed event without payload")
		}
		target := html.EscapeString("/@" + payload.NewUsername)
		return []EventData{{
			EventName: "username-changed",
			HTML: WrapForOOBSwap("profile-notice",
				`<p>This profile moved to <a href="`+target+`">@`+html.EscapeString(payload.NewUsername)+`</a>.</p>`+
					`<script>window.location.replace("`+target+`");</script>`),
		}}, nil
	}

	return nil, nil
}
