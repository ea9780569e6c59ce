package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vzeefun/vzee/internal/model"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <username>",
		Short: "Stream live changes to a profile",
		Long: `Connect to a profile's event stream and print changes as they happen.

Events include:
  - clip-added: A clip was uploaded
  - clip-removed: A clip was deleted
  - username-changed: The profile moved to a new username

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			username := model.CanonicalUsername(args[0])
			url := strings.TrimSuffix(a.cfg.ServerURL, "/") + "/" + username + "/events"

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}
			req.Header.Set("Accept", "text/event-stream")
			req.Header.Set("Cache-Control", "no-cache")
			if a.cfg.Token != "" {
				req.AddCookie(&http.Cookie{Name: "session", Value: a.cfg.Token})
			}

			// No timeout for SSE
			resp, err := (&http.Client{}).Do(req)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("connection failed: %w", err)
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode == http.StatusNotFound {
				return model.ErrProfileNotFound
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("unexpected status: %d", resp.StatusCode)
			}

			w := &eventWriter{out: cmd.OutOrStdout(), json: a.cfg.Output == "json"}
			if !w.json {
				_, _ = fmt.Fprintf(w.out, "Watching @%s\n", username)
			}

			err = readSSE(resp.Body, w.print)
			if ctx.Err() != nil {
				err = nil
			}
			if err != nil {
				return fmt.Errorf("stream error: %w", err)
			}
			if !w.json {
				_, _ = fmt.Fprintln(w.out, "Disconnected")
			}
			return nil
		},
	}
}

// SSEEvent is one event read from a stream
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

// readSSE calls fn for each complete event in r until r ends
func readSSE(r io.Reader, fn func(event, data string)) error {
	scanner := bufio.NewScanner(r)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if currentEvent != "" {
				fn(currentEvent, strings.Join(dataLines, "\n"))
			}
			currentEvent = ""
			dataLines = nil
		}
	}
	return scanner.Err()
}

type eventWriter struct {
	out  io.Writer
	json bool
	now  func() time.Time
}

func (w *eventWriter) print(event, data string) {
	now := time.Now()
	if w.now != nil {
		now = w.now()
	}

	if w.json {
		jsonData, _ := json.Marshal(SSEEvent{Time: now, Event: event, Data: data})
		_, _ = fmt.Fprintln(w.out, string(jsonData))
		return
	}

	// Rendered fragments are HTML; keep one line per event
	displayData := strings.ReplaceAll(data, "\n", " ")
	if len(displayData) > 100 {
		displayData = displayData[:100] + "..."
	}
	_, _ = fmt.Fprintf(w.out, "[%s] %s: %s\n", now.Format(time.DateTime), event, displayData)
}
