package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/finbook/internal/metrics"
	"github.com/mmynk/finbook/internal/storage"
)

// WithTx runs fn as one atomic unit of work: it takes the exclusive write
// slot, begins a transaction, and commits only if fn returns nil. On any
// failure the transaction is rolled back and the first error is returned
// tagged with the phase that failed (storage.TxBegin, TxCommit or TxExec).
//
// The exclusive slot is released on every exit path. Because there is exactly
// one slot, at most one transaction executes at a time; units of work are
// never interleaved or nested. Callers must not call WithTx while holding the
// shared (read) slot, and any caller-imposed timeout belongs before this call,
// never after the slot is acquired.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		metrics.TxRolledBack.WithLabelValues("begin").Inc()
		return &storage.TxError{Kind: storage.TxBegin, Err: err}
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			slog.Error("rollback failed", "error", rbErr)
		}
		metrics.TxRolledBack.WithLabelValues("exec").Inc()
		return &storage.TxError{Kind: storage.TxExec, Err: err}
	}

	if err := tx.Commit(); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			slog.Error("rollback after failed commit failed", "error", rbErr)
		}
		metrics.TxRolledBack.WithLabelValues("commit").Inc()
		return &storage.TxError{Kind: storage.TxCommit, Err: err}
	}

	metrics.TxCommitted.Inc()
	metrics.TxDuration.Observe(time.Since(start).Seconds())
	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
// The modernc driver does not export a typed constraint error, so this matches
// the message the engine produces.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
