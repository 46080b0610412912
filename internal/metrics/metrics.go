// Package metrics exposes the Prometheus collectors for the analytics
// service.
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
	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_queries_total",
			Help: "Total number of analytics product computations",
		},
		[]string{"product"},
	)

	queryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analytics_query_duration_seconds",
			Help:    "Analytics product computation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"product"},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_http_requests_total",
			Help: "HTTP requests by path pattern and status code",
		},
		[]string{"pattern", "status"},
	)

	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_cache_events_total",
			Help: "Result cache hits and misses",
		},
		[]string{"outcome"},
	)
)

// ObserveQuery records one computation of an analytics product. Meant
// to be deferred at the top of a service method:
//
//	defer metrics.ObserveQuery("overview", time.Now())
func ObserveQuery(product string, start time.Time) {
	queriesTotal.WithLabelValues(product).Inc()
	queryDuration.WithLabelValues(product).Observe(time.Since(start).Seconds())
}

// CacheEvent records a cache hit or miss.
func CacheEvent(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	cacheHits.WithLabelValues(outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware counts requests per route pattern and status code. The
// chi pattern keeps the label set bounded regardless of path values.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		httpRequests.WithLabelValues(pattern, strconv.Itoa(rec.status)).Inc()
	})
}
