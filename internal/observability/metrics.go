package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus counters for the triage pipeline.
type Metrics struct {
	registry *prometheus.Registry

	Classifications  *prometheus.CounterVec
	TicketsCreated   prometheus.Counter
	SLABreaches      *prometheus.CounterVec
	Escalations      *prometheus.CounterVec
	AlertTransitions *prometheus.CounterVec
	DroppedEvents    prometheus.Counter
	StoreRetries     prometheus.Counter
}

// NewMetrics registers all collectors on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_classifications_total",
			Help: "Classifications performed, by resulting category.",
		}, []string{"category"}),
		TicketsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triage_tickets_created_total",
			Help: "Tickets created through the intake or escalation paths.",
		}),
		SLABreaches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_sla_breaches_total",
			Help: "SLA breach events emitted by the scanner, by priority.",
		}, []string{"priority"}),
		Escalations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_escalations_total",
			Help: "Escalations performed, by source (chat or sla).",
		}, []string{"source"}),
		AlertTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_alert_transitions_total",
			Help: "Alert level transitions, by metric key and direction.",
		}, []string{"metric", "direction"}),
		DroppedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triage_dropped_events_total",
			Help: "Events dropped from slow subscriber queues.",
		}),
		StoreRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triage_store_retries_total",
			Help: "Retries against the external ticket store.",
		}),
	}

	registry.MustRegister(
		m.Classifications,
		m.TicketsCreated,
		m.SLABreaches,
		m.Escalations,
		m.AlertTransitions,
		m.DroppedEvents,
		m.StoreRetries,
	)
	return m
}

// Registry returns the underlying registry for the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}
