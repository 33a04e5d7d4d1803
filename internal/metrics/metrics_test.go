package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCounters(t *testing.T) {
	c := NewCollector("test")

	c.ObserveListingFilter(FilterEmpty)
	c.ObserveListingFilter(FilterEmpty)
	c.ObserveAssignment(AssignDenied)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.ListingFilters.WithLabelValues(FilterEmpty)))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.ListingFilters.WithLabelValues(FilterMatched)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Assignments.WithLabelValues(AssignDenied)))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveListingFilter(FilterNone)
		c.ObserveAssignment(AssignAssigned)
	})
}

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	c := NewCollector("test")
	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/stores/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", c.Handler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/stores/42", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/stores/{id}", "418")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "test_http_requests_total"))
}
