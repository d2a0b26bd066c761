package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the domain factor.
type Metrics struct {
	// Check outcomes by state
	CheckOutcome *prometheus.CounterVec

	// Checks that fell back to an unconfigured policy because settings could not be read
	SettingsLoadFailures prometheus.Counter

	// Admin settings updates
	SettingsUpdates prometheus.Counter

	// Full check latency including settings load and audit
	CheckLatency prometheus.Histogram
}

// New creates the factor metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CheckOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "factor_domain_checks_total",
			Help: "Total domain factor checks by resulting state",
		}, []string{"state"}), // state: "pass", "neutral"

		SettingsLoadFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "factor_domain_settings_load_failures_total",
			Help: "Checks evaluated as unconfigured because settings could not be loaded",
		}),

		SettingsUpdates: factory.NewCounter(prometheus.CounterOpts{
			Name: "factor_domain_settings_updates_total",
			Help: "Total admin updates of domain factor settings",
		}),

		CheckLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "factor_domain_check_duration_seconds",
			Help:    "Duration of domain factor checks",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
	}
}

// IncrementOutcome records a check outcome.
func (m *Metrics) IncrementOutcome(state string) {
	if m != nil {
		m.CheckOutcome.WithLabelValues(state).Inc()
	}
}

// IncrementSettingsLoadFailure records a settings read failure.
func (m *Metrics) IncrementSettingsLoadFailure() {
	if m != nil {
		m.SettingsLoadFailures.Inc()
	}
}

// IncrementSettingsUpdate records an admin settings write.
func (m *Metrics) IncrementSettingsUpdate() {
	if m != nil {
		m.SettingsUpdates.Inc()
	}
}

// ObserveCheckLatency records the duration of a check.
func (m *Metrics) ObserveCheckLatency(d time.Duration) {
	if m != nil {
		m.CheckLatency.Observe(d.Seconds())
	}
}
