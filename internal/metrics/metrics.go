// Package metrics exposes Prometheus collectors for the service core
// plus HTTP middleware for the ops router.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ItemsStaged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codedrop_items_staged_total",
		Help: "Items appended to pending batches",
	})

	BatchesCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codedrop_batches_committed_total",
		Help: "Batches committed under a code",
	})

	BatchesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codedrop_batches_deleted_total",
		Help: "Batches deleted explicitly by their owner",
	})

	Redemptions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codedrop_redemptions_total",
		Help: "Successful code redemptions",
	})

	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codedrop_deliveries_total",
		Help: "Send-group deliveries by outcome",
	}, []string{"outcome"})

	BroadcastSends = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codedrop_broadcast_sends_total",
		Help: "Per-recipient broadcast sends by outcome",
	}, []string{"outcome"})

	SweptItems = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codedrop_swept_items_total",
		Help: "Expired items removed by the sweeper",
	})

	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "codedrop_sweep_duration_seconds",
		Help:    "Duration of one expiry sweep pass",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	})
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns HTTP middleware that records Prometheus metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := newResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		// Use chi's route pattern if available to avoid high cardinality
		path := r.URL.Path
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}
