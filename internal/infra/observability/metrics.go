package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors in a private registry so
// several instances can coexist in tests. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	activeRequests     prometheus.Gauge
	leadsScored        *prometheus.CounterVec
	conversions        *prometheus.CounterVec
	reconciliation     *prometheus.CounterVec
	degradedSteps      *prometheus.CounterVec
	integrationErrors  *prometheus.CounterVec
	activitiesConsumed *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crm_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		activeRequests: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "crm_http_active_requests",
				Help: "Number of in-flight HTTP requests.",
			},
		),
		leadsScored: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_leads_scored_total",
				Help: "Lead scoring attempts by outcome.",
			},
			[]string{"outcome"},
		),
		conversions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_lead_conversions_total",
				Help: "Lead-to-deal conversions by outcome.",
			},
			[]string{"outcome"},
		),
		reconciliation: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_catalog_mappings_total",
				Help: "Catalog mapping items applied, by action and outcome.",
			},
			[]string{"action", "outcome"},
		),
		degradedSteps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_degraded_steps_total",
				Help: "Non-essential workflow steps that failed.",
			},
			[]string{"step"},
		),
		integrationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_integration_errors_total",
				Help: "Errors returned by external services.",
			},
			[]string{"service"},
		),
		activitiesConsumed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_activity_events_total",
				Help: "Activity events handled by the queue worker.",
			},
			[]string{"outcome"},
		),
	}
}

func (m *Metrics) RecordHTTPRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) RequestStarted() {
	if m == nil {
		return
	}
	m.activeRequests.Inc()
}

func (m *Metrics) RequestFinished() {
	if m == nil {
		return
	}
	m.activeRequests.Dec()
}

func (m *Metrics) RecordLeadScore(outcome string) {
	if m == nil {
		return
	}
	m.leadsScored.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordConversion(outcome string) {
	if m == nil {
		return
	}
	m.conversions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordReconciliationItem(action, outcome string) {
	if m == nil {
		return
	}
	m.reconciliation.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) RecordDegradedStep(step string) {
	if m == nil {
		return
	}
	m.degradedSteps.WithLabelValues(step).Inc()
}

func (m *Metrics) RecordIntegrationError(service string) {
	if m == nil {
		return
	}
	m.integrationErrors.WithLabelValues(service).Inc()
}

func (m *Metrics) RecordActivityEvent(outcome string) {
	if m == nil {
		return
	}
	m.activitiesConsumed.WithLabelValues(outcome).Inc()
}
