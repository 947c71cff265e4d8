// Package metrics holds the Prometheus collectors of the service. Every
// layer records through the helpers here; /metrics exposes the default
// registry.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "Size of HTTP responses",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	ActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Current number of active HTTP requests",
		},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_operation_duration_seconds",
			Help:    "Duration of note store operations",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "collection"},
	)

	NoteOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notes_operations_total",
			Help: "Accepted note mutations",
		},
		[]string{"operation"}, // create, update, delete
	)

	TokenChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Access token checks by outcome",
		},
		[]string{"status", "type"}, // success/failure/revoked, token
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type"}, // store, validation, panic
	)
)

// ObserveRequest records one served request under its route template.
func ObserveRequest(method, route string, status int, elapsed time.Duration, size int) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
	HTTPResponseSize.WithLabelValues(method, route).Observe(float64(size))
}

// TrackDBOperation starts a timer; call ObserveDuration when the operation ends.
func TrackDBOperation(operation, collection string) *prometheus.Timer {
	return prometheus.NewTimer(StoreOperationDuration.WithLabelValues(operation, collection))
}

func TrackNoteOperation(operation string) {
	NoteOperationsTotal.WithLabelValues(operation).Inc()
}

func TrackAuthAttempt(status, authType string) {
	TokenChecksTotal.WithLabelValues(status, authType).Inc()
}

func TrackError(errorType string) {
	ErrorsTotal.WithLabelValues(errorType).Inc()
}
