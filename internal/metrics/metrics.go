// Package metrics exposes Prometheus instrumentation for the write core.
// Collectors register on the default registry; the embedding process decides
// whether and where to serve them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TxCommitted counts successfully committed transactions.
	TxCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "finbook",
		Subsystem: "db",
		Name:      "transactions_committed_total",
		Help:      "Number of write transactions that committed.",
	})

	// TxRolledBack counts transactions rolled back, by failure phase.
	TxRolledBack = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finbook",
		Subsystem: "db",
		Name:      "transactions_rolled_back_total",
		Help:      "Number of write transactions rolled back, labeled by the phase that failed.",
	}, []string{"phase"})

	// TxDuration observes wall time spent holding the exclusive write slot.
	TxDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "finbook",
		Subsystem: "db",
		Name:      "transaction_duration_seconds",
		Help:      "Duration of write transactions, lock acquisition included.",
		Buckets:   prometheus.DefBuckets,
	})

	// IdempotentReplays counts split requests answered from the ledger.
	IdempotentReplays = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "finbook",
		Subsystem: "split",
		Name:      "idempotent_replays_total",
		Help:      "Number of split requests served from a committed idempotency entry.",
	})

	// StaleReservationsPurged counts crash-residue reservations cleaned up.
	StaleReservationsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "finbook",
		Subsystem: "split",
		Name:      "stale_reservations_purged_total",
		Help:      "Number of reserved idempotency entries purged as crash residue.",
	})
)
