// Package metrics holds the Prometheus instruments for the payment pipeline.
// All methods are nil-safe so wiring metrics stays optional in tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	decisions      *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
	cacheHits      prometheus.Counter
	volumeCommits  prometheus.Counter
	dispatchErrors prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paygate_payment_decisions_total",
			Help: "Authorization decisions by outcome and failing stage",
		}, []string{"outcome", "stage"}),
		stageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "paygate_payment_stage_duration_ms",
			Help:    "Latency of each authorization stage in milliseconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		}, []string{"stage"}),
		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "paygate_payment_decision_cache_hits_total",
			Help: "Authorizations answered from the stored decision",
		}),
		volumeCommits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "paygate_payment_volume_commits_total",
			Help: "Dispatched payments recorded against daily volume",
		}),
		dispatchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "paygate_payment_dispatch_errors_total",
			Help: "Payment dispatch attempts that failed at the backend",
		}),
	}
}

func (m *Metrics) Decision(allowed bool, stage string) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if allowed {
		outcome = "authorized"
	}
	m.decisions.WithLabelValues(outcome, stage).Inc()
}

func (m *Metrics) StageObserved(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(float64(d.Microseconds()) / 1000.0)
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

func (m *Metrics) VolumeCommitted() {
	if m == nil {
		return
	}
	m.volumeCommits.Inc()
}

func (m *Metrics) DispatchError() {
	if m == nil {
		return
	}
	m.dispatchErrors.Inc()
}
