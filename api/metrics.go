package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "school_board",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "school_board",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	backendCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "school_board",
		Name:      "backend_calls_total",
		Help:      "Storage backend calls by operation, backend and outcome.",
	}, []string{"operation", "backend", "outcome"})

	backendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "school_board",
		Name:      "backend_call_duration_seconds",
		Help:      "Storage backend latency by operation and backend.",
		Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
	}, []string{"operation", "backend"})
)

// ObserveBackendCall records one storage backend call that started at start
func ObserveBackendCall(operation, backend string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	backendCalls.WithLabelValues(operation, backend, outcome).Inc()
	backendDuration.WithLabelValues(operation, backend).Observe(time.Since(start).Seconds())
}
