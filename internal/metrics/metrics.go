// Package metrics provides Prometheus metrics for the collection pipeline
// and the report API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	URLsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cwv_urls_processed_total",
			Help: "Total number of URLs processed, by outcome",
		},
		[]string{"outcome"},
	)
	FetchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cwv_fetch_attempts_total",
			Help: "Total number of PageSpeed API request attempts",
		},
		[]string{"strategy"},
	)
	FetchRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cwv_fetch_retries_total",
			Help: "Total number of PageSpeed API retries after a transient failure",
		},
		[]string{"strategy"},
	)
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cwv_fetch_duration_seconds",
			Help:    "Duration of a logical PageSpeed fetch including retries",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"strategy"},
	)
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cwv_runs_total",
			Help: "Total number of collection runs, by final status",
		},
		[]string{"status"},
	)
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cwv_run_duration_seconds",
			Help:    "Duration of a full collection run",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 1800, 3600},
		},
	)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cwv_http_requests_total",
			Help: "Total number of HTTP requests served by the report API",
		},
		[]string{"method", "endpoint", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cwv_http_request_duration_seconds",
			Help:    "Report API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

func RecordURLProcessed(outcome string) {
	URLsProcessed.WithLabelValues(outcome).Inc()
}

func RecordFetchAttempt(strategy string) {
	FetchAttempts.WithLabelValues(strategy).Inc()
}

func RecordFetchRetry(strategy string) {
	FetchRetries.WithLabelValues(strategy).Inc()
}

func RecordFetchDuration(strategy string, duration time.Duration) {
	FetchDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

func RecordRun(status string, duration time.Duration) {
	RunsTotal.WithLabelValues(status).Inc()
	RunDuration.Observe(duration.Seconds())
}

func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
