// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline Metrics
	RemixRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remix_runs_total",
			Help: "Total number of remix pipeline runs",
		},
		[]string{"source", "outcome"}, // outcome is "success" or the failure kind
	)

	RemixDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remix_duration_seconds",
			Help:    "Duration of remix pipeline runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 900},
		},
		[]string{"source"},
	)

	AssetPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asset_poll_attempts_total",
			Help: "Total number of remote asset state polls",
		},
		[]string{"state"},
	)

	// Queue Metrics
	QueueTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_transitions_total",
			Help: "Total number of queue item status transitions",
		},
		[]string{"to"},
	)

	PublishedPosts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "published_posts_total",
			Help: "Total number of scheduled items posted",
		},
		[]string{"platform"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120, 600},
		},
		[]string{"method", "endpoint"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"scope"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Current number of open queue websocket connections",
		},
	)
)

// RecordRemix records one finished pipeline run
func RecordRemix(source, outcome string, started time.Time) {
	RemixRuns.WithLabelValues(source, outcome).Inc()
	RemixDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
}

// RecordAPIRequest records one handled HTTP request
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
