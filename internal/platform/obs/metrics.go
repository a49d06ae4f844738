package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP-level collectors, registered on the default registry and exposed at
// /metrics.
var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dispatch",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "path", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dispatch",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration by method and route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	RoutesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dispatch",
		Name:      "routes_generated_total",
		Help:      "Routes created by auto-generation.",
	})

	RoutesOptimized = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dispatch",
		Name:      "routes_optimized_total",
		Help:      "Routes re-sequenced by the optimizer.",
	})
)
