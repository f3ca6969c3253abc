package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification pipeline.
type Metrics struct {
	// Sessions created through document intake
	SessionsCreated prometheus.Counter

	// Stage processing latency by stage name
	StageLatency *prometheus.HistogramVec

	// Stage failures by stage name and error code
	StageFailures *prometheus.CounterVec

	// Final decision outcomes by label
	DecisionOutcome *prometheus.CounterVec
}

// New creates a Metrics instance with all verification metrics registered.
func New() *Metrics {
	return &Metrics{
		SessionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verigate_sessions_created_total",
			Help: "Total verification sessions created",
		}),

		StageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "verigate_stage_duration_seconds",
			Help:    "Duration of pipeline stages including collaborator calls",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"stage"}), // stage: "document", "biometric", "risk"

		StageFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "verigate_stage_failures_total",
			Help: "Total stage failures by stage and error code",
		}, []string{"stage", "code"}),

		DecisionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "verigate_decisions_total",
			Help: "Total final decisions by label",
		}, []string{"decision"}),
	}
}

// IncrementSessionsCreated records a new verification session.
func (m *Metrics) IncrementSessionsCreated() {
	if m != nil {
		m.SessionsCreated.Inc()
	}
}

// ObserveStageLatency records the duration of a pipeline stage.
func (m *Metrics) ObserveStageLatency(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// IncrementStageFailure records a failed stage call.
func (m *Metrics) IncrementStageFailure(stage, code string) {
	if m != nil {
		m.StageFailures.WithLabelValues(stage, code).Inc()
	}
}

// IncrementDecision records a final decision outcome.
func (m *Metrics) IncrementDecision(decision string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(decision).Inc()
	}
}
