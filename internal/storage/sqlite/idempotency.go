package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/finbook/internal/models"
	"github.com/mmynk/finbook/internal/storage"
)

// ReserveIdempotency claims (owner, token) by inserting a reserved row with no
// response. The primary key on (owner_id, token) is the collision detector:
// any existing row, reserved or completed, fails the insert.
func (s *Store) ReserveIdempotency(ctx context.Context, ownerID, token string) error {
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO idempotency_keys (token, owner_id, response, status, created_at) VALUES (?, ?, NULL, 0, ?)",
			token, ownerID, time.Now().Unix(),
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrTokenExists
		}
		return fmt.Errorf("failed to reserve idempotency token: %w", err)
	}
	return nil
}

// CommitIdempotency completes a reserved row with the response and status.
// Only a still-reserved row can be completed.
func (s *Store) CommitIdempotency(ctx context.Context, ownerID, token string, response []byte, status int) error {
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE idempotency_keys SET response = ?, status = ? WHERE owner_id = ? AND token = ? AND response IS NULL",
			string(response), status, ownerID, token,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
	if errors.Is(err, storage.ErrNotFound) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to commit idempotency entry: %w", err)
	}
	return nil
}

// DeleteReservation removes a reserved row so the token can be retried from
// scratch. A completed row is never deleted through this path.
func (s *Store) DeleteReservation(ctx context.Context, ownerID, token string) error {
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"DELETE FROM idempotency_keys WHERE owner_id = ? AND token = ? AND response IS NULL",
			ownerID, token,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	return nil
}

// GetIdempotency retrieves the ledger entry for (owner, token).
func (s *Store) GetIdempotency(ctx context.Context, ownerID, token string) (*models.IdempotencyEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry := &models.IdempotencyEntry{}
	var response sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT token, owner_id, response, status, created_at FROM idempotency_keys WHERE owner_id = ? AND token = ?",
		ownerID, token,
	).Scan(&entry.Token, &entry.OwnerID, &response, &entry.Status, &entry.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idempotency entry: %w", err)
	}

	if response.Valid {
		entry.State = models.StateCompleted
		entry.Response = []byte(response.String)
	} else {
		entry.State = models.StateReserved
	}
	return entry, nil
}
