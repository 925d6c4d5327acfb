package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels
const (
	OutcomeSuccess    = "success"
	OutcomeError      = "error"
	OutcomeSuperseded = "superseded"
	OutcomeSkipped    = "skipped"
)

// ViewMetrics counts job view operations. A nil *ViewMetrics is valid and
// records nothing.
type ViewMetrics struct {
	loads   *prometheus.CounterVec
	applies *prometheus.CounterVec
}

// NewViewMetrics registers the view counters on reg
func NewViewMetrics(reg prometheus.Registerer) *ViewMetrics {
	m := &ViewMetrics{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobview",
			Name:      "job_loads_total",
			Help:      "Job detail loads by outcome.",
		}, []string{"outcome"}),
		applies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobview",
			Name:      "job_applies_total",
			Help:      "Apply actions by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.loads, m.applies)
	return m
}

// LoadFinished records one load outcome
func (m *ViewMetrics) LoadFinished(outcome string) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(outcome).Inc()
}

// ApplyFinished records one apply outcome
func (m *ViewMetrics) ApplyFinished(outcome string) {
	if m == nil {
		return
	}
	m.applies.WithLabelValues(outcome).Inc()
}
