package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the gateway.
type Metrics struct {
	// Upstream weather API metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: endpoint, outcome={success,upstream_error,transport_error,normalize_error}
	UpstreamDuration *prometheus.HistogramVec // labels: endpoint

	// Normalization metrics.
	RepairsFired      *prometheus.CounterVec // labels: schema, rule
	NormalizeFailures *prometheus.CounterVec // labels: schema

	// HTTP surface metrics.
	RequestDuration *prometheus.HistogramVec // labels: method, route

	// Audit event metrics.
	AuditEventsPublished prometheus.Counter
	AuditEventErrors     prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_gateway",
			Name:      "upstream_requests_total",
			Help:      "Upstream weather API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weather_gateway",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream weather API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
		RepairsFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_gateway",
			Name:      "normalize_repairs_total",
			Help:      "Repair rules fired during normalization, by schema and rule.",
		}, []string{"schema", "rule"}),
		NormalizeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_gateway",
			Name:      "normalize_failures_total",
			Help:      "Documents that failed normalization after all applicable repairs.",
		}, []string{"schema"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weather_gateway",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of gateway HTTP requests by method and route.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 30},
		}, []string{"method", "route"}),
		AuditEventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_gateway",
			Name:      "audit_events_published_total",
			Help:      "Entity mutation audit events published to Kafka.",
		}),
		AuditEventErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_gateway",
			Name:      "audit_event_errors_total",
			Help:      "Audit events that failed to publish.",
		}),
	}
}

// NewMetrics creates and registers all gateway metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.RepairsFired,
		m.NormalizeFailures,
		m.RequestDuration,
		m.AuditEventsPublished,
		m.AuditEventErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
