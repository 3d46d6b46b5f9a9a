// Package metrics holds the Prometheus instrumentation for the review
// pipeline and its HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ReviewsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "review_insights", Name: "reviews_ingested_total", Help: "Reviews read from input files."},
		[]string{"bank"},
	)
	RowsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "review_insights", Name: "rows_skipped_total", Help: "Input rows dropped during ingest."},
	)
	StageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "review_insights", Name: "stage_failures_total", Help: "Non-fatal stage failures."},
		[]string{"stage"},
	)
	Runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "review_insights", Name: "runs_total", Help: "Pipeline runs by outcome."},
		[]string{"status"},
	)
	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "review_insights", Name: "run_duration_seconds",
			Help:    "End-to-end pipeline run duration.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)
	RemoteRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "review_insights", Name: "remote_requests_total", Help: "Outbound sentiment requests."},
		[]string{"status"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "review_insights", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "review_insights", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(ReviewsIngested, RowsSkipped, StageFailures, Runs, RunDuration, RemoteRequests, HTTPRequests, HTTPLatency)
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveRun(status string, dur time.Duration) {
	Runs.WithLabelValues(status).Inc()
	RunDuration.Observe(dur.Seconds())
}
