// Package metrics provides Prometheus instrumentation for the marquee server.
//
// Metrics are registered via promauto to the default registerer at package init and exposed at GET /metrics
// through [Handler].
//
//	marquee_http_requests_total              counter: requests by method, route and status
//	marquee_http_request_duration_seconds    histogram: latency by method and route
//	marquee_transfers_total                  counter: transfer calls by operation and outcome
//	marquee_transfer_rows_total              counter: list item rows inserted, skipped or tombstoned
//	marquee_transfer_duration_seconds        histogram: transfer transaction latency by operation
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transfer outcomes used as the outcome label of [Transfers].
const (
	OutcomeOK         = "ok"
	OutcomeDuplicate  = "duplicate"
	OutcomeNotFound   = "not_found"
	OutcomeForbidden  = "forbidden"
	OutcomeInvalid    = "invalid"
	OutcomeError      = "error"
	unmatchedRouteTag = "unmatched"
)

// HTTPRequests counts HTTP requests by method, route template and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "marquee_http_requests_total",
	Help: "Total HTTP requests handled.",
}, []string{"method", "route", "status"})

// HTTPDuration tracks HTTP request latency.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "marquee_http_request_duration_seconds",
	Help:    "HTTP request latency in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route"})

// Transfers counts copy, move and bulk calls by outcome.
var Transfers = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "marquee_transfers_total",
	Help: "Transfer engine calls by operation and outcome.",
}, []string{"operation", "outcome"})

// TransferRows counts list item rows touched by committed transfers.
var TransferRows = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "marquee_transfer_rows_total",
	Help: "List item rows inserted, skipped as duplicates, or tombstoned by transfers.",
}, []string{"operation", "kind"})

// TransferDuration tracks how long a transfer transaction takes.
var TransferDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "marquee_transfer_duration_seconds",
	Help:    "Transfer transaction latency in seconds.",
	Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
}, []string{"operation"})

// ObserveTransfer records one finished transfer call. Row counters only move for committed calls.
func ObserveTransfer(operation, outcome string, inserted, skipped, tombstoned int, elapsed time.Duration) {
	Transfers.WithLabelValues(operation, outcome).Inc()
	TransferDuration.WithLabelValues(operation).Observe(elapsed.Seconds())

	if outcome != OutcomeOK && outcome != OutcomeDuplicate {
		return
	}
	TransferRows.WithLabelValues(operation, "inserted").Add(float64(inserted))
	TransferRows.WithLabelValues(operation, "skipped").Add(float64(skipped))
	TransferRows.WithLabelValues(operation, "tombstoned").Add(float64(tombstoned))
}

// Handler returns the Prometheus HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency. The route label is the gorilla/mux path template so ids do not
// explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := routeTemplate(r)
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return unmatchedRouteTag
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return unmatchedRouteTag
	}
	return tpl
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
