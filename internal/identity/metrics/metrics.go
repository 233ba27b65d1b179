package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the identity module.
type Metrics struct {
	SessionsCreated   *prometheus.CounterVec
	SessionsCompleted *prometheus.CounterVec
	LevelLookups      prometheus.Counter
}

// New creates a new Metrics instance with all identity module metrics
// registered.
func New() *Metrics {
	return &Metrics{
		SessionsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paygate_identity_sessions_created_total",
			Help: "Verification sessions opened by proof type",
		}, []string{"proof_type"}),

		SessionsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paygate_identity_sessions_completed_total",
			Help: "Verification sessions reaching a terminal state",
		}, []string{"status"}),

		LevelLookups: promauto.NewCounter(prometheus.CounterOpts{
			Name: "paygate_identity_level_lookups_total",
			Help: "Verification level derivations served",
		}),
	}
}

// IncrementSessionCreated records a newly opened session.
func (m *Metrics) IncrementSessionCreated(proofType string) {
	if m != nil {
		m.SessionsCreated.WithLabelValues(proofType).Inc()
	}
}

// IncrementSessionCompleted records a session reaching a terminal state.
func (m *Metrics) IncrementSessionCompleted(status string) {
	if m != nil {
		m.SessionsCompleted.WithLabelValues(status).Inc()
	}
}

// IncrementLevelLookup records one level derivation.
func (m *Metrics) IncrementLevelLookup() {
	if m != nil {
		m.LevelLookups.Inc()
	}
}
