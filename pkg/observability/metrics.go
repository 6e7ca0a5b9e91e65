// Package observability exposes the Prometheus instruments shared by the API.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "travelbot"

// Metrics groups every collector the service records. A nil *Metrics is valid
// and records nothing, which keeps unit tests free of registry plumbing.
type Metrics struct {
	cacheLookups     *prometheus.CounterVec
	cacheFills       *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups partitioned by tier and hit or miss.",
		}, []string{"cache", "result"}),
		cacheFills: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_fills_total",
			Help:      "Compute invocations partitioned by tier and outcome.",
		}, []string{"cache", "result"}),
		upstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Requests sent to third-party sources.",
		}, []string{"source", "outcome"}),
		upstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of third-party source requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route template and status code.",
		}, []string{"route", "code"}),
		httpLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// CacheHit counts a lookup served from the named cache tier.
func (m *Metrics) CacheHit(cache string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(cache, "hit").Inc()
}

// CacheMiss counts a lookup that had to wait for a computation.
func (m *Metrics) CacheMiss(cache string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(cache, "miss").Inc()
}

// CacheFill counts one compute invocation and whether it was stored.
func (m *Metrics) CacheFill(cache string, err error) {
	if m == nil {
		return
	}
	result := "stored"
	if err != nil {
		result = "failed"
	}
	m.cacheFills.WithLabelValues(cache, result).Inc()
}

// ObserveUpstream records one third-party request.
func (m *Metrics) ObserveUpstream(source string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.upstreamRequests.WithLabelValues(source, outcome).Inc()
	m.upstreamLatency.WithLabelValues(source).Observe(time.Since(started).Seconds())
}

// Middleware records request counts and latency keyed by the matched route template.
func (m *Metrics) Middleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := "unmatched"
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			m.httpRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
			m.httpLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
