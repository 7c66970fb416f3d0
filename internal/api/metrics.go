package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// apiReqs counts outbound calls by method, resource and outcome.
	// outcome is the status code, or "error" when no response was received.
	apiReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stm_api_requests_total",
			Help: "Total number of requests sent to the Shout service.",
		},
		[]string{"method", "resource", "outcome"},
	)

	apiLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stm_api_request_duration_seconds",
			Help:    "Duration of requests sent to the Shout service in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "resource"},
	)
)

func init() {
	prometheus.MustRegister(apiReqs, apiLat)
}

// resourceOf returns the first path segment ("/shouts/123" -> "shouts") to
// keep label cardinality bounded.
func resourceOf(path string) string {
	p := strings.TrimPrefix(path, "/")
	if i := strings.IndexAny(p, "/?"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "root"
	}
	return p
}

func observe(method, path string, status int, start time.Time) {
	res := resourceOf(path)
	outcome := "error"
	if status > 0 {
		outcome = strconv.Itoa(status)
	}
	apiReqs.WithLabelValues(method, res, outcome).Inc()
	apiLat.WithLabelValues(method, res).Observe(time.Since(start).Seconds())
}
