// Package metrics exposes Prometheus collectors for the request path.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks handler latency per route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodlens_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "status"},
	)

	// DetectionsTotal counts classifications by resulting emotion label.
	DetectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodlens_detections_total",
			Help: "Total number of emotion detections by label",
		},
		[]string{"emotion"},
	)

	// FallbacksTotal counts recommendations served from the curated table.
	FallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moodlens_recommendation_fallbacks_total",
			Help: "Total number of recommendations resolved to a curated fallback",
		},
	)

	// CacheHits and CacheMisses count recommendation cache lookups.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moodlens_recommendation_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
	)
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moodlens_recommendation_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	// ModelErrorsTotal counts unexpected detector model failures.
	ModelErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moodlens_model_errors_total",
			Help: "Total number of emotion model invocation failures",
		},
	)
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// HTTPMiddleware records request duration for the named route.
func HTTPMiddleware(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			HTTPRequestDuration.
				WithLabelValues(route, strconv.Itoa(rec.status)).
				Observe(time.Since(start).Seconds())
		})
	}
}
