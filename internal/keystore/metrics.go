package keystore

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes operational counters for the secret store. All methods are
// nil-safe so the manager works without a registry wired in.
type Metrics struct {
	operations     *prometheus.CounterVec
	unlockFailures prometheus.Counter
	migrations     prometheus.Counter
}

// NewMetrics creates and registers the store's metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spinvault",
			Subsystem: "keystore",
			Name:      "operations_total",
			Help:      "Wallet store operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		unlockFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spinvault",
			Subsystem: "keystore",
			Name:      "unlock_failures_total",
			Help:      "Wallet unlock attempts rejected with an invalid credential.",
		}),
		migrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spinvault",
			Subsystem: "keystore",
			Name:      "legacy_migrations_total",
			Help:      "Legacy single-wallet records migrated into the collection format.",
		}),
	}
	reg.MustRegister(m.operations, m.unlockFailures, m.migrations)
	return m
}

func (m *Metrics) observeOperation(op, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) observeUnlockFailure() {
	if m == nil {
		return
	}
	m.unlockFailures.Inc()
}

func (m *Metrics) observeMigration() {
	if m == nil {
		return
	}
	m.migrations.Inc()
}
