package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every irscout metric.
const Namespace = "irscout"

// MetricsCollector owns the HTTP and summary series in a private registry,
// so several collectors can live in one process (tests build one per
// router). Package-level promauto metrics, such as the crawl pipeline's,
// stay on the default registry and are served alongside.
type MetricsCollector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	inFlight     prometheus.Gauge

	summaries *prometheus.CounterVec
}

func NewMetricsCollector(version, commit string) *MetricsCollector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	mc := &MetricsCollector{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			// Crawls with a browser fallback run for minutes, not milliseconds.
			Buckets: []float64{0.05, 0.25, 1, 2.5, 5, 10, 30, 60, 120, 180},
		}, []string{"method", "route"}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served",
		}),
		summaries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "summaries_total",
			Help:      "Report summaries by source and outcome",
		}, []string{"source", "outcome"}),
	}

	factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "build_info",
		Help:      "Build metadata; always 1",
	}, []string{"version", "commit"}).WithLabelValues(version, commit).Set(1)

	return mc
}

// ObserveSummary records one summary request; source is "html" or "pdf".
func (mc *MetricsCollector) ObserveSummary(source, outcome string) {
	mc.summaries.WithLabelValues(source, outcome).Inc()
}

// MetricsMiddleware records count, latency and concurrency per route.
// Unmatched paths share one label to keep cardinality bounded.
func (mc *MetricsCollector) MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		mc.inFlight.Inc()
		defer mc.inFlight.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		mc.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		mc.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry merged with this collector's.
func (mc *MetricsCollector) Handler() gin.HandlerFunc {
	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer, mc.registry}
	return gin.WrapH(promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{Registry: mc.registry}))
}
