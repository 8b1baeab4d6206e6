package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors used by API, registry and dispatch flows.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal        *prometheus.CounterVec
	httpRequestDuration      *prometheus.HistogramVec
	integrationProbesTotal   *prometheus.CounterVec
	integrationProbeDuration *prometheus.HistogramVec
	dispatchRecipientsTotal  *prometheus.CounterVec
	dispatchSendDuration     *prometheus.HistogramVec
	dispatchInflight         prometheus.Gauge
	slugConflictsTotal       *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "folio_engine",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "folio_engine",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		integrationProbesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "folio_engine",
				Name:      "integration_probes_total",
				Help:      "Total number of live integration probes by provider and resulting status.",
			},
			[]string{"provider", "status"},
		),
		integrationProbeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "folio_engine",
				Name:      "integration_probe_duration_seconds",
				Help:      "Live integration probe duration in seconds grouped by provider.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"provider"},
		),
		dispatchRecipientsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "folio_engine",
				Name:      "dispatch_recipients_total",
				Help:      "Total number of bulk dispatch recipients by outcome (sent, failed, skipped).",
			},
			[]string{"outcome"},
		),
		dispatchSendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "folio_engine",
				Name:      "dispatch_send_duration_seconds",
				Help:      "Single-recipient send duration in seconds grouped by outcome.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"outcome"},
		),
		dispatchInflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "folio_engine",
				Name:      "dispatch_inflight",
				Help:      "Current number of in-flight single-recipient sends.",
			},
		),
		slugConflictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "folio_engine",
				Name:      "slug_conflicts_total",
				Help:      "Total number of slug unique-index violations resolved by re-resolution.",
			},
			[]string{"collection"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.integrationProbesTotal,
		m.integrationProbeDuration,
		m.dispatchRecipientsTotal,
		m.dispatchSendDuration,
		m.dispatchInflight,
		m.slugConflictsTotal,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) ObserveIntegrationProbe(provider string, status string, duration time.Duration) {
	if m == nil {
		return
	}
	providerLabel := normalizeLabel(provider)
	m.integrationProbesTotal.WithLabelValues(providerLabel, normalizeLabel(status)).Inc()
	m.integrationProbeDuration.WithLabelValues(providerLabel).Observe(nonNegativeSeconds(duration))
}

func (m *Metrics) IncDispatchRecipient(outcome string) {
	if m == nil {
		return
	}
	m.dispatchRecipientsTotal.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *Metrics) AddDispatchRecipients(outcome string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.dispatchRecipientsTotal.WithLabelValues(normalizeLabel(outcome)).Add(float64(count))
}

func (m *Metrics) ObserveDispatchSendDuration(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dispatchSendDuration.WithLabelValues(normalizeLabel(outcome)).Observe(nonNegativeSeconds(duration))
}

func (m *Metrics) IncDispatchInFlight() {
	if m == nil {
		return
	}
	m.dispatchInflight.Inc()
}

func (m *Metrics) DecDispatchInFlight() {
	if m == nil {
		return
	}
	m.dispatchInflight.Dec()
}

func (m *Metrics) IncSlugConflict(collection string) {
	if m == nil {
		return
	}
	m.slugConflictsTotal.WithLabelValues(normalizeLabel(collection)).Inc()
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}

func nonNegativeSeconds(duration time.Duration) float64 {
	seconds := duration.Seconds()
	if seconds < 0 {
		return 0
	}
	return seconds
}
