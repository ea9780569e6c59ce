package middleware

import (
	"log/slog"
	"net/http"

	"github.com/vzeefun/vzee/internal/middleware"
)

// Logging creates logging middleware for the web interface.
// Requests are also counted under the "web" surface.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	logging := middleware.Logging(logger)
	count := middleware.Metrics("web")
	return func(next http.Handler) http.Handler {
		return logging(count(next))
	}
}
