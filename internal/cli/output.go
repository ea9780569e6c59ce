package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/vzeefun/vzee/internal/client"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	stdout io.Writer
	stderr io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, stdout, stderr io.Writer) *Output {
	return &Output{format: format, stdout: stdout, stderr: stderr}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"code":    client.ErrorCode(err),
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.stderr, string(data))
	} else {
		_, _ = fmt.Fprintf(o.stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.stdout, string(data))
	} else {
		_, _ = fmt.Fprintln(o.stdout, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case *client.AuthResult:
		o.printAuthResult(v)
	case *WhoamiResult:
		o.printWhoami(v)
	case *client.Profile:
		o.printProfile(v)
	case *client.Availability:
		o.printAvailability(v)
	case *UploadResult:
		o.printClip(v.Clip)
		if v.LocalURL != "" {
			o.printf("Local: %s\n", v.LocalURL)
		}
	case *client.Clip:
		o.printClip(v)
	case *ClipListResult:
		o.printClipList(v)
	case *client.Health:
		o.printf("Status: %s\n", v.Status)
	case *PlayResult:
		o.printf("Played %s (%d bytes, state %s)\n", v.Ref, v.Bytes, v.State)
		if v.Recovered {
			o.printf("Recovered from original: %s\n", v.Original)
		}
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// WhoamiResult is the signed-in user and their username
type WhoamiResult struct {
	User     client.User `json:"user"`
	Username string      `json:"username,omitempty"`
	Offline  bool        `json:"offline,omitempty"`
}

// UploadResult is an uploaded clip
type UploadResult struct {
	Clip     *client.Clip `json:"clip"`
	LocalURL string       `json:"local_url,omitempty"`
}

// ClipListResult is a username's clips
type ClipListResult struct {
	Username string        `json:"username"`
	Clips    []client.Clip `json:"clips"`
}

// PlayResult summarises a playback session
type PlayResult struct {
	Ref       string `json:"ref"`
	Bytes     int64  `json:"bytes"`
	State     string `json:"state"`
	Recovered bool   `json:"recovered,omitempty"`
	Original  string `json:"original,omitempty"`
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.stdout, format, args...)
}

func (o *Output) printAuthResult(a *client.AuthResult) {
	o.printf("Signed in as %s <%s>\n", a.User.DisplayName, a.User.Email)
	if a.Username != "" {
		o.printf("Username: @%s\n", a.Username)
	} else {
		o.printf("No username yet: run `vzee username claim <name>`\n")
	}
}

func (o *Output) printWhoami(w *WhoamiResult) {
	o.printf("User: %s <%s>\n", w.User.DisplayName, w.User.Email)
	if w.Username != "" {
		o.printf("Username: @%s\n", w.Username)
	} else {
		o.printf("Username: (none)\n")
	}
	if w.Offline {
		o.printf("(server unreachable, showing cached details)\n")
	}
}

func (o *Output) printProfile(p *client.Profile) {
	o.printf("Username: @%s\n", p.Username)
	if p.DisplayName != "" {
		o.printf("Name: %s\n", p.DisplayName)
	}
}

func (o *Output) printAvailability(a *client.Availability) {
	switch {
	case a.Available && a.Confirmed:
		o.printf("@%s is available\n", a.Name)
	case a.Available:
		o.printf("@%s looks available (server unreachable, not confirmed)\n", a.Name)
	default:
		o.printf("@%s is not available: %s\n", a.Name, a.Reason)
	}
}

func (o *Output) printClip(c *client.Clip) {
	o.printf("Title: %s\n", c.Title)
	if c.ShareURL != "" {
		o.printf("Share: %s\n", c.ShareURL)
	}
	o.printf("Audio: %s\n", c.AudioURL)
	if c.Size > 0 {
		o.printf("Size: %s (%s)\n", formatSize(c.Size), c.ContentType)
	}
}

func (o *Output) printClipList(l *ClipListResult) {
	if len(l.Clips) == 0 {
		o.printf("@%s has no clips\n", l.Username)
		return
	}
	o.printf("@%s (%d clips):\n", l.Username, len(l.Clips))
	for _, c := range l.Clips {
		o.printf("  %-30s %8s  %s\n", c.Title, formatSize(c.Size), c.CreatedAt.Local().Format(time.DateTime))
	}
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
