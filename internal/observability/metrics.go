package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's prometheus collectors. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	registry     *prometheus.Registry
	entries      *prometheus.CounterVec
	degenerate   *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "farmperf_entries_total",
			Help: "Biogas and grading entry operations by kind, operation and result.",
		}, []string{"kind", "op", "result"}),
		degenerate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "farmperf_degenerate_metrics_total",
			Help: "Derived fields forced to zero because of NaN, infinity, negative deltas or zero denominators.",
		}, []string{"engine", "field"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "farmperf_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.entries,
		m.degenerate,
		m.httpDuration,
	)
	return m
}

// RecordEntry counts one entry operation.
func (m *Metrics) RecordEntry(kind, op, result string) {
	if m == nil {
		return
	}
	m.entries.WithLabelValues(kind, op, result).Inc()
}

// RecordDegenerate counts a derived field that was absorbed into a default.
func (m *Metrics) RecordDegenerate(engine, field string) {
	if m == nil {
		return
	}
	m.degenerate.WithLabelValues(engine, field).Inc()
}

// Middleware times every request by its route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
