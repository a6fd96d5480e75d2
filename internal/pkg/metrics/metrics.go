// Package metrics holds the Prometheus collectors shared by the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fridge_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fridge_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fridge_recipe_cache_operations_total",
			Help: "Recipe cache lookups and evictions by tier and result",
		},
		[]string{"tier", "result"},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fridge_recipe_cache_entries",
			Help: "Entries currently held by the in-memory recipe cache",
		},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fridge_upstream_request_duration_seconds",
			Help:    "Latency of calls to external collaborators",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"upstream", "outcome"},
	)

	RegionFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fridge_region_fallbacks_total",
			Help: "Requests priced with the default region, by reason",
		},
		[]string{"reason"},
	)

	RecipesPriced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fridge_recipes_priced_total",
			Help: "Recipes priced, split by whether the draft was malformed",
		},
		[]string{"malformed"},
	)
)

// ObserveUpstream records the latency and outcome of one upstream call.
func ObserveUpstream(upstream string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	UpstreamDuration.WithLabelValues(upstream, outcome).Observe(time.Since(start).Seconds())
}

// Middleware counts requests per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
