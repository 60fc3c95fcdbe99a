package main

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests          *prometheus.CounterVec
	fallbacks         *prometheus.CounterVec
	analyticsDuration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "finance_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "path", "status"}),
		fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "finance_store_fallback_total",
			Help: "Store operations answered by the local store because the database failed.",
		}, []string{"operation"}),
		analyticsDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "finance_analytics_duration_seconds",
			Help:    "Time spent computing analytics and reports.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"kind"}),
	}
}

// storeFallback is the FallbackStore hook.
func (m *metrics) storeFallback(operation string) {
	m.fallbacks.WithLabelValues(operation).Inc()
}

// timeAnalytics starts a timer for kind; call the returned func when done.
func (m *metrics) timeAnalytics(kind string) func() {
	timer := prometheus.NewTimer(m.analyticsDuration.WithLabelValues(kind))
	return func() { timer.ObserveDuration() }
}

// instrument counts requests by route template, so ids do not explode the label set.
func (m *metrics) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
