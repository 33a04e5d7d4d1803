package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Listing filter outcomes.
const (
	FilterNone    = "none"
	FilterMatched = "matched"
	FilterEmpty   = "empty"
)

// Assignment write outcomes.
const (
	AssignAssigned = "assigned"
	AssignCleared  = "cleared"
	AssignDenied   = "denied"
)

// Collector holds the Prometheus metrics of the service on its own registry.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	ListingFilters *prometheus.CounterVec
	Assignments    *prometheus.CounterVec
}

// NewCollector creates a collector with every metric registered under namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ListingFilters: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "listing_filter_total",
				Help:      "Store listing requests by vendor category filter outcome",
			},
			[]string{"outcome"},
		),
		Assignments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "category_assignments_total",
				Help:      "Vendor category assignment writes by result",
			},
			[]string{"result"},
		),
	}
	c.registry.MustRegister(c.HTTPRequests, c.HTTPDuration, c.ListingFilters, c.Assignments)
	return c
}

// ObserveListingFilter counts one listing filter outcome. Safe on a nil collector.
func (c *Collector) ObserveListingFilter(outcome string) {
	if c == nil {
		return
	}
	c.ListingFilters.WithLabelValues(outcome).Inc()
}

// ObserveAssignment counts one assignment write. Safe on a nil collector.
func (c *Collector) ObserveAssignment(result string) {
	if c == nil {
		return
	}
	c.Assignments.WithLabelValues(result).Inc()
}

// Handler exposes the registry for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latencies keyed by the chi route pattern.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
