// Package service implements the operations the surrounding layers call into:
// owner-scoped record and category management and the split fan-out engine.
// Handlers map service.Error kinds onto their own status vocabulary; nothing
// here produces a wire-format response.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmynk/finbook/internal/calculator"
	"github.com/mmynk/finbook/internal/models"
	"github.com/mmynk/finbook/internal/storage"
	"github.com/shopspring/decimal"
)

const (
	defaultRecordsLimit = 50
	maxRecordsLimit     = 200
	maxOffset           = 10000
)

// RecordService manages owner-scoped financial records.
type RecordService struct {
	store storage.Store
}

// NewRecordService creates a RecordService with the given storage backend.
func NewRecordService(store storage.Store) *RecordService {
	return &RecordService{store: store}
}

// CreateRecordRequest describes a direct (non-split) record insert.
type CreateRecordRequest struct {
	Name       string
	Amount     decimal.Decimal // signed; negative = expense
	CategoryID string
	Date       string
}

// CreateRecord validates and persists a new record for the owner.
func (s *RecordService) CreateRecord(ctx context.Context, ownerID string, req *CreateRecordRequest) (*models.Record, error) {
	if req.Name == "" || len(req.Name) > maxNameLength {
		return nil, validationf("name must be 1-%d characters", maxNameLength)
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return nil, validationf("date %q is not in YYYY-MM-DD format", req.Date)
	}
	if req.Amount.IsZero() {
		return nil, validationf("amount must be non-zero")
	}
	cents, err := calculator.ToCents(req.Amount)
	if err != nil {
		return nil, validationf("%v", err)
	}

	owner := s.store.Owner(ownerID)
	if req.CategoryID != "" {
		if _, err := owner.GetCategory(ctx, req.CategoryID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, notFoundf("category %s does not exist", req.CategoryID)
			}
			return nil, internal("failed to validate category", err)
		}
	}

	record := &models.Record{
		Name:        req.Name,
		AmountCents: cents,
		CategoryID:  req.CategoryID,
		Date:        req.Date,
	}
	if err := owner.CreateRecord(ctx, record); err != nil {
		return nil, internal("failed to create record", err)
	}

	slog.Info("record created", "record_id", record.ID, "owner_id", ownerID)
	return record, nil
}

// GetRecord retrieves one of the owner's records.
func (s *RecordService) GetRecord(ctx context.Context, ownerID, recordID string) (*models.Record, error) {
	record, err := s.store.Owner(ownerID).GetRecord(ctx, recordID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFoundf("record %s not found", recordID)
	}
	if err != nil {
		return nil, internal("failed to get record", err)
	}
	return record, nil
}

// ListRecords retrieves the owner's records matching the filter, applying the
// default and maximum page sizes.
func (s *RecordService) ListRecords(ctx context.Context, ownerID string, filter storage.RecordFilter) ([]models.Record, error) {
	if filter.Limit == 0 {
		filter.Limit = defaultRecordsLimit
	}
	if filter.Limit < 0 || filter.Limit > maxRecordsLimit {
		return nil, validationf("limit must be 1-%d", maxRecordsLimit)
	}
	if filter.Offset < 0 || filter.Offset > maxOffset {
		return nil, validationf("offset must be 0-%d", maxOffset)
	}

	records, err := s.store.Owner(ownerID).ListRecords(ctx, filter)
	if err != nil {
		return nil, internal("failed to list records", err)
	}
	return records, nil
}

// UpdateRecord updates the name, amount, category and date of one of the
// owner's records.
func (s *RecordService) UpdateRecord(ctx context.Context, ownerID, recordID string, req *CreateRecordRequest) (*models.Record, error) {
	if req.Name == "" || len(req.Name) > maxNameLength {
		return nil, validationf("name must be 1-%d characters", maxNameLength)
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return nil, validationf("date %q is not in YYYY-MM-DD format", req.Date)
	}
	cents, err := calculator.ToCents(req.Amount)
	if err != nil {
		return nil, validationf("%v", err)
	}

	owner := s.store.Owner(ownerID)
	if req.CategoryID != "" {
		if _, err := owner.GetCategory(ctx, req.CategoryID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, notFoundf("category %s does not exist", req.CategoryID)
			}
			return nil, internal("failed to validate category", err)
		}
	}

	record := &models.Record{
		ID:          recordID,
		Name:        req.Name,
		AmountCents: cents,
		CategoryID:  req.CategoryID,
		Date:        req.Date,
	}
	err = owner.UpdateRecord(ctx, record)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFoundf("record %s not found", recordID)
	}
	if err != nil {
		return nil, internal("failed to update record", err)
	}
	return s.GetRecord(ctx, ownerID, recordID)
}

// DeleteRecord deletes one of the owner's records.
func (s *RecordService) DeleteRecord(ctx context.Context, ownerID, recordID string) error {
	err := s.store.Owner(ownerID).DeleteRecord(ctx, recordID)
	if errors.Is(err, storage.ErrNotFound) {
		return notFoundf("record %s not found", recordID)
	}
	if err != nil {
		return internal("failed to delete record", err)
	}
	slog.Info("record deleted", "record_id", recordID, "owner_id", ownerID)
	return nil
}

// SettleRecord marks one of the owner's records as settled. Settling twice is
// a conflict so callers can distinguish a repeat from a first settlement.
func (s *RecordService) SettleRecord(ctx context.Context, ownerID, recordID string) error {
	err := s.store.Owner(ownerID).SettleRecord(ctx, recordID)
	if errors.Is(err, storage.ErrNotFound) {
		return notFoundf("record %s not found", recordID)
	}
	if errors.Is(err, storage.ErrAlreadySettled) {
		return conflictf("record %s is already settled", recordID)
	}
	if err != nil {
		return internal("failed to settle record", err)
	}
	slog.Info("record settled", "record_id", recordID, "owner_id", ownerID)
	return nil
}
