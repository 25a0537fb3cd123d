// Package metrics holds the prometheus collectors for admindesk.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for API calls.
const (
	OutcomeOK           = "ok"
	OutcomeError        = "error"
	OutcomeUnauthorized = "unauthorized"
	OutcomeRejected     = "rejected" // mutation returned success:false
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admindesk_api_requests_total",
			Help: "Calls made to the admin REST API.",
		},
		[]string{"resource", "method", "outcome"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "admindesk_api_request_duration_seconds",
			Help:    "Latency of calls to the admin REST API.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource", "method"},
	)

	StaleResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admindesk_stale_responses_total",
			Help: "List responses discarded because a newer request was issued for the same resource.",
		},
		[]string{"resource"},
	)

	ConsolesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "admindesk_consoles_active",
			Help: "Admin consoles currently held in memory.",
		},
	)
)

// ObserveAPI records one API call.
func ObserveAPI(resource, method, outcome string, started time.Time) {
	APIRequestsTotal.WithLabelValues(resource, method, outcome).Inc()
	APIRequestDuration.WithLabelValues(resource, method).Observe(time.Since(started).Seconds())
}

// Handler serves the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
