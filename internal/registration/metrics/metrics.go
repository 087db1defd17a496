package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rejection reasons recorded by RecordRejection.
const (
	ReasonInvalidRequest  = "invalid_request"
	ReasonInvalidIDNumber = "invalid_id_number"
	ReasonDOBMismatch     = "dob_mismatch"
	ReasonFutureDOB       = "future_dob"
	ReasonUnderAge        = "under_age"
	ReasonDuplicate       = "duplicate"
	ReasonIdempotency     = "idempotency_conflict"
)

// Outcome label values for published events.
const (
	EventPublished = "published"
	EventFailed    = "failed"
	EventDropped   = "dropped"
)

// Metrics holds Prometheus collectors for the registration workflow.
type Metrics struct {
	Registered    *prometheus.CounterVec
	Rejections    *prometheus.CounterVec
	Replays       prometheus.Counter
	StatusChanges *prometheus.CounterVec
	Events        *prometheus.CounterVec
	BreakerOpen   prometheus.Gauge
}

// New registers and returns registration metrics collectors.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Registered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "testadmin_applicants_registered_total",
			Help: "Total applicants registered, labeled by ID type",
		}, []string{"id_type"}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "testadmin_applicant_registration_rejections_total",
			Help: "Total rejected registrations, labeled by reason",
		}, []string{"reason"}),
		Replays: factory.NewCounter(prometheus.CounterOpts{
			Name: "testadmin_applicant_registration_replays_total",
			Help: "Total registrations answered from an idempotency record",
		}),
		StatusChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "testadmin_applicant_status_changes_total",
			Help: "Total applicant status transitions, labeled by target status",
		}, []string{"status"}),
		Events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "testadmin_applicant_events_total",
			Help: "Applicant events by type and outcome (published, failed, dropped)",
		}, []string{"event_type", "outcome"}),
		BreakerOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "testadmin_applicant_events_circuit_open",
			Help: "1 while the event publisher circuit is open",
		}),
	}
}

// IncrementRegistered records one new applicant.
func (m *Metrics) IncrementRegistered(idType string) {
	m.Registered.WithLabelValues(idType).Inc()
}

// RecordRejection records one rejected registration.
func (m *Metrics) RecordRejection(reason string) {
	m.Rejections.WithLabelValues(reason).Inc()
}

// IncrementReplays records one idempotent replay.
func (m *Metrics) IncrementReplays() {
	m.Replays.Inc()
}

// IncrementStatusChange records one status transition.
func (m *Metrics) IncrementStatusChange(status string) {
	m.StatusChanges.WithLabelValues(status).Inc()
}

// RecordEvent records the outcome of publishing one event.
func (m *Metrics) RecordEvent(eventType, outcome string) {
	m.Events.WithLabelValues(eventType, outcome).Inc()
}

// SetBreakerOpen mirrors the publisher circuit state.
func (m *Metrics) SetBreakerOpen(open bool) {
	if open {
		m.BreakerOpen.Set(1)
		return
	}
	m.BreakerOpen.Set(0)
}
