// Package metrics defines the Prometheus metrics exposed at /metrics.
// Metrics register with the default registry on package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vzee"

// UsernameClaimsTotal counts claim attempts.
// Label:
//   - result: "claimed", "taken", "owned", "reserved", "invalid" or "error"
var UsernameClaimsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "username_claims_total",
		Help:      "Total number of username claim attempts, by result.",
	},
	[]string{"result"},
)

// UsernameRenamesTotal counts completed renames
var UsernameRenamesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "username_renames_total",
		Help:      "Total number of completed username renames.",
	},
)

// ClipUploadsTotal counts upload attempts.
// Label:
//   - result: "stored", "rejected" or "error"
var ClipUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clip_uploads_total",
		Help:      "Total number of clip upload attempts, by result.",
	},
	[]string{"result"},
)

// ClipUploadBytes observes the size of stored clips
var ClipUploadBytes = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "clip_upload_bytes",
		Help:      "Size of stored clips in bytes.",
		Buckets:   prometheus.ExponentialBuckets(16<<10, 4, 6), // 16KiB .. 16MiB
	},
)

// ClipDeletesTotal counts deleted clips
var ClipDeletesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clip_deletes_total",
		Help:      "Total number of deleted clips.",
	},
)

// DirectoryLookupsTotal counts share-link resolutions.
// Label:
//   - result: "hit" or "miss"
var DirectoryLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "directory_lookups_total",
		Help:      "Total number of clip lookups by username and title, by result.",
	},
	[]string{"result"},
)

// HTTPRequestsTotal counts handled requests.
// Labels:
//   - surface: "api" or "web"
//   - code: HTTP status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by surface and status code.",
	},
	[]string{"surface", "code"},
)

// SSEClients tracks connected live-profile listeners
var SSEClients = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sse_clients",
		Help:      "Current number of connected live-profile listeners.",
	},
)

// RateLimitedTotal counts requests rejected by the rate limiter
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the per-client rate limiter.",
	},
)

// ActiveSessions tracks unexpired sign-in sessions, sampled by the cleanup loop
var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Number of unexpired sign-in sessions.",
	},
)

// PanicsRecovered counts handler panics turned into 500 responses
var PanicsRecovered = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "panics_recovered_total",
		Help:      "Total number of handler panics recovered by middleware.",
	},
)
