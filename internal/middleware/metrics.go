package middleware

import (
	"net/http"
	"strconv"

	"github.com/vzeefun/vzee/internal/metrics"
)

// Metrics counts responses by status code for one HTTP surface
func Metrics(surface string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := WrapResponseWriter(w)
			next.ServeHTTP(wrapped, r)
			metrics.HTTPRequestsTotal.WithLabelValues(surface, strconv.Itoa(wrapped.status)).Inc()
		})
	}
}
