package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/finbook/internal/models"
	"github.com/mmynk/finbook/internal/storage"
)

// Ensure ownerStore implements storage.OwnerStore
var _ storage.OwnerStore = (*ownerStore)(nil)

// ownerStore is the owner-scoped accessor returned by Store.Owner.
// Every SQL statement it issues binds the owner identifier, so a query that
// forgets the owner predicate cannot be written through this type.
type ownerStore struct {
	s       *Store
	ownerID string
}

const recordColumns = "id, owner_id, name, amount_cents, category_id, date, pending, split_id, settle, debtor_id, creditor_id, created_at"

// scanRecord scans one records row, normalizing nullable columns.
func scanRecord(row interface{ Scan(...any) error }) (*models.Record, error) {
	r := &models.Record{}
	var categoryID, splitID, debtorID, creditorID sql.NullString
	err := row.Scan(
		&r.ID, &r.OwnerID, &r.Name, &r.AmountCents, &categoryID, &r.Date,
		&r.Pending, &splitID, &r.Settled, &debtorID, &creditorID, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.CategoryID = categoryID.String
	r.SplitID = splitID.String
	r.DebtorID = debtorID.String
	r.CreditorID = creditorID.String
	return r, nil
}

// nullable converts an empty string to a SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// insertRecord issues the INSERT for one record inside an open transaction.
func insertRecord(ctx context.Context, tx *sql.Tx, r *models.Record) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO records ("+recordColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		r.ID, r.OwnerID, r.Name, r.AmountCents, nullable(r.CategoryID), r.Date,
		r.Pending, nullable(r.SplitID), r.Settled, nullable(r.DebtorID), nullable(r.CreditorID), r.CreatedAt,
	)
	return err
}

// fillRecordDefaults populates generated fields if unset.
func fillRecordDefaults(r *models.Record) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().Unix()
	}
}

// CreateRecord persists a new record for the owner.
func (o *ownerStore) CreateRecord(ctx context.Context, record *models.Record) error {
	fillRecordDefaults(record)
	record.OwnerID = o.ownerID

	err := o.s.WithTx(ctx, func(tx *sql.Tx) error {
		return insertRecord(ctx, tx, record)
	})
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// GetRecord retrieves one of the owner's records by ID.
func (o *ownerStore) GetRecord(ctx context.Context, recordID string) (*models.Record, error) {
	o.s.mu.RLock()
	defer o.s.mu.RUnlock()

	record, err := scanRecord(o.s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE id = ? AND owner_id = ?",
		recordID, o.ownerID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

// ListRecords retrieves the owner's records matching the filter, newest first.
func (o *ownerStore) ListRecords(ctx context.Context, filter storage.RecordFilter) ([]models.Record, error) {
	o.s.mu.RLock()
	defer o.s.mu.RUnlock()

	query := "SELECT " + recordColumns + " FROM records WHERE owner_id = ?"
	args := []any{o.ownerID}

	if filter.StartDate != "" {
		query += " AND date >= ?"
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		query += " AND date <= ?"
		args = append(args, filter.EndDate)
	}
	if filter.Pending != nil {
		query += " AND pending = ?"
		args = append(args, *filter.Pending)
	}
	if filter.Settled != nil {
		query += " AND settle = ?"
		args = append(args, *filter.Settled)
	}

	query += " ORDER BY date DESC, created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := o.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}

// UpdateRecord updates the mutable fields of one of the owner's records.
func (o *ownerStore) UpdateRecord(ctx context.Context, record *models.Record) error {
	err := o.s.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE records SET name = ?, amount_cents = ?, category_id = ?, date = ? WHERE id = ? AND owner_id = ?",
			record.Name, record.AmountCents, nullable(record.CategoryID), record.Date,
			record.ID, o.ownerID,
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
		return fmt.Errorf("failed to update record: %w", err)
	}
	return nil
}

// DeleteRecord deletes one of the owner's records.
func (o *ownerStore) DeleteRecord(ctx context.Context, recordID string) error {
	err := o.s.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM records WHERE id = ? AND owner_id = ?",
			recordID, o.ownerID,
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
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// SettleRecord marks one of the owner's records as settled, exactly once.
func (o *ownerStore) SettleRecord(ctx context.Context, recordID string) error {
	err := o.s.WithTx(ctx, func(tx *sql.Tx) error {
		var settled bool
		err := tx.QueryRowContext(ctx,
			"SELECT settle FROM records WHERE id = ? AND owner_id = ?",
			recordID, o.ownerID,
		).Scan(&settled)
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		if settled {
			return storage.ErrAlreadySettled
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE records SET settle = 1 WHERE id = ? AND owner_id = ?",
			recordID, o.ownerID,
		)
		return err
	})
	if errors.Is(err, storage.ErrNotFound) {
		return storage.ErrNotFound
	}
	if errors.Is(err, storage.ErrAlreadySettled) {
		return storage.ErrAlreadySettled
	}
	if err != nil {
		return fmt.Errorf("failed to settle record: %w", err)
	}
	return nil
}

// CreateSplitRecords inserts all records as one atomic unit of work.
// Either every record is durably applied or none are.
func (s *Store) CreateSplitRecords(ctx context.Context, records []*models.Record) error {
	for _, r := range records {
		fillRecordDefaults(r)
	}
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		for _, r := range records {
			if err := insertRecord(ctx, tx, r); err != nil {
				return fmt.Errorf("failed to insert split record for %s: %w", r.OwnerID, err)
			}
		}
		return nil
	})
}
