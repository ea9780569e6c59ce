package testutil

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
)

// NopLogger returns a logger that discards all output
func NopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Logger returns a logger that writes through t.Log when VZEE_TEST_LOG is
// set, so output lines up with the failing test. Otherwise it discards.
func Logger(t testing.TB) *slog.Logger {
	if os.Getenv("VZEE_TEST_LOG") == "" {
		return NopLogger()
	}
	return slog.New(slog.NewTextHandler(tWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type tWriter struct{ t testing.TB }

var _ io.Writer = tWriter{}

func (w tWriter) Write(b []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimSuffix(string(b), "\n"))
	return len(b), nil
}
