package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values for validation counters.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
)

// Metrics holds Prometheus collectors for ID number validation.
type Metrics struct {
	Validations        *prometheus.CounterVec
	ValidationDuration *prometheus.HistogramVec
}

// New registers and returns identity metrics collectors.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Validations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "testadmin_identity_validations_total",
			Help: "Total ID number validations, labeled by ID type and result",
		}, []string{"id_type", "result"}),
		ValidationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "testadmin_identity_validation_duration_seconds",
			Help:    "Latency of ID number validation in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}, []string{"id_type"}),
	}
}

// ObserveValidation records one validation. Unsupported type strings are
// folded into "unsupported" to bound label cardinality.
func (m *Metrics) ObserveValidation(idType string, valid bool, d time.Duration) {
	result := ResultInvalid
	if valid {
		result = ResultValid
	}
	m.Validations.WithLabelValues(idType, result).Inc()
	m.ValidationDuration.WithLabelValues(idType).Observe(d.Seconds())
}
