package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/finbook/internal/calculator"
	"github.com/mmynk/finbook/internal/metrics"
	"github.com/mmynk/finbook/internal/models"
	"github.com/mmynk/finbook/internal/storage"
)

const (
	maxTokenLength = 255
	maxNameLength  = 255

	// splitCreatedStatus is the status code committed to the ledger alongside
	// the response. The core stores and replays it without interpreting it.
	splitCreatedStatus = 201
)

// SplitService is the fan-out engine: it turns one split request into one
// record per participant, atomically, under an idempotency token.
type SplitService struct {
	store storage.Store
}

// NewSplitService creates a SplitService with the given storage backend.
func NewSplitService(store storage.Store) *SplitService {
	return &SplitService{store: store}
}

// CreateSplit validates the request, computes per-participant shares, and
// inserts all resulting records as one atomic unit under the request's
// idempotency token.
//
// Replaying the same token returns the previously committed result verbatim,
// with no additional rows inserted. A reserved entry found on lookup is crash
// residue and is purged before a fresh attempt; a failure after reservation
// deletes the reservation so the token stays retryable.
func (s *SplitService) CreateSplit(ctx context.Context, req *models.SplitRequest) (*models.SplitResult, error) {
	start := time.Now()

	if req.IdempotencyToken == "" || len(req.IdempotencyToken) > maxTokenLength {
		return nil, validationf("idempotency token must be 1-%d characters", maxTokenLength)
	}

	// A committed entry replays without re-validating; a reserved entry is
	// crash residue and is purged so the attempt below starts fresh.
	if result, done, err := s.replayOrPurge(ctx, req); done || err != nil {
		return result, err
	}

	totalCents, participants, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	// Shares are computed before the token is reserved so an invalid request
	// never burns its idempotency token.
	shares, err := calculator.ComputeShares(totalCents, participants, req.PayerID)
	if err != nil {
		return nil, validationf("%v", err)
	}

	if err := s.store.ReserveIdempotency(ctx, req.PayerID, req.IdempotencyToken); err != nil {
		if errors.Is(err, storage.ErrTokenExists) {
			return nil, conflictf("idempotency token %q is already in use", req.IdempotencyToken)
		}
		return nil, internal("failed to reserve idempotency token", err)
	}

	splitID := uuid.New().String()
	records := buildSplitRecords(req, splitID, shares)

	if err := s.store.CreateSplitRecords(ctx, records); err != nil {
		if delErr := s.store.DeleteReservation(ctx, req.PayerID, req.IdempotencyToken); delErr != nil {
			slog.Error("failed to release split reservation",
				"payer_id", req.PayerID, "token", req.IdempotencyToken, "error", delErr)
		}
		slog.Error("split fan-out failed",
			"payer_id", req.PayerID, "split_id", splitID,
			"tx_phase", storage.TxKind(err).String(), "error", err)
		return nil, internal("split fan-out failed", err)
	}

	result := &models.SplitResult{SplitID: splitID}
	for _, r := range records {
		result.Records = append(result.Records, *r)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, internal("failed to serialize split response", err)
	}
	if err := s.store.CommitIdempotency(ctx, req.PayerID, req.IdempotencyToken, payload, splitCreatedStatus); err != nil {
		// The records exist; a later lookup will see the reserved row as
		// residue and purge it, same as a crash between insert and commit.
		slog.Error("failed to commit idempotency entry",
			"payer_id", req.PayerID, "token", req.IdempotencyToken, "error", err)
		return nil, internal("failed to commit idempotency entry", err)
	}

	slog.Info("split created",
		"split_id", splitID,
		"payer_id", req.PayerID,
		"participants", len(shares),
		"total_cents", totalCents,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// replayOrPurge inspects the ledger for the request's token. A completed entry
// is returned verbatim (done=true); a reserved entry is purged as crash
// residue so the caller may re-reserve; an absent entry is a fresh attempt.
func (s *SplitService) replayOrPurge(ctx context.Context, req *models.SplitRequest) (*models.SplitResult, bool, error) {
	entry, err := s.store.GetIdempotency(ctx, req.PayerID, req.IdempotencyToken)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, internal("failed to look up idempotency token", err)
	}

	switch entry.State {
	case models.StateCompleted:
		var result models.SplitResult
		if err := json.Unmarshal(entry.Response, &result); err != nil {
			return nil, false, internal("failed to deserialize committed split response", err)
		}
		metrics.IdempotentReplays.Inc()
		slog.Info("replaying committed split response",
			"payer_id", req.PayerID, "token", req.IdempotencyToken, "split_id", result.SplitID)
		return &result, true, nil

	default:
		metrics.StaleReservationsPurged.Inc()
		slog.Warn("purging stale split reservation",
			"payer_id", req.PayerID, "token", req.IdempotencyToken)
		if err := s.store.DeleteReservation(ctx, req.PayerID, req.IdempotencyToken); err != nil {
			return nil, false, internal("failed to purge stale reservation", err)
		}
		return nil, false, nil
	}
}

// validate checks the request shape and that every referenced entity exists.
// All checks run before any reservation or mutation.
func (s *SplitService) validate(ctx context.Context, req *models.SplitRequest) (int64, []calculator.Participant, error) {
	if req.Name == "" || len(req.Name) > maxNameLength {
		return 0, nil, validationf("name must be 1-%d characters", maxNameLength)
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return 0, nil, validationf("date %q is not in YYYY-MM-DD format", req.Date)
	}
	if !req.Total.IsPositive() {
		return 0, nil, validationf("total must be positive")
	}
	totalCents, err := calculator.ToCents(req.Total)
	if err != nil {
		return 0, nil, validationf("%v", err)
	}

	if len(req.Participants) == 0 {
		return 0, nil, validationf("participant list is empty")
	}

	seen := make(map[string]bool, len(req.Participants))
	payerIncluded := false
	participants := make([]calculator.Participant, 0, len(req.Participants))
	for _, p := range req.Participants {
		if p.UserID == "" {
			return 0, nil, validationf("participant user ID is empty")
		}
		if seen[p.UserID] {
			return 0, nil, validationf("duplicate participant %s", p.UserID)
		}
		seen[p.UserID] = true
		if p.UserID == req.PayerID {
			payerIncluded = true
		}

		part := calculator.Participant{UserID: p.UserID}
		if !p.Share.IsZero() {
			if !p.Share.IsPositive() {
				return 0, nil, validationf("share for %s must be positive", p.UserID)
			}
			cents, err := calculator.ToCents(p.Share)
			if err != nil {
				return 0, nil, validationf("%v", err)
			}
			part.ShareCents = cents
			part.Explicit = true
		}
		participants = append(participants, part)
	}

	if !payerIncluded {
		return 0, nil, validationf("payer %s must be one of the participants", req.PayerID)
	}
	if len(req.Participants) == 1 {
		// Degenerate split: the payer splitting with only themselves.
		return 0, nil, validationf("split requires at least one participant besides the payer")
	}

	for _, p := range participants {
		exists, err := s.store.UserExists(ctx, p.UserID)
		if err != nil {
			return 0, nil, internal("failed to validate participant", err)
		}
		if !exists {
			return 0, nil, notFoundf("participant %s is not a known user", p.UserID)
		}
	}

	if req.CategoryID != "" {
		if _, err := s.store.Owner(req.PayerID).GetCategory(ctx, req.CategoryID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return 0, nil, notFoundf("category %s does not exist", req.CategoryID)
			}
			return 0, nil, internal("failed to validate category", err)
		}
	}

	return totalCents, participants, nil
}

// buildSplitRecords materializes one record per share. The payer's record is
// the settled expense and carries the category; every other participant gets
// a pending debt record naming the payer as creditor. Categories are
// owner-scoped, so participant records stay uncategorized.
func buildSplitRecords(req *models.SplitRequest, splitID string, shares []calculator.Share) []*models.Record {
	records := make([]*models.Record, 0, len(shares))

	// Payer first, then participants in request order.
	for _, payerFirst := range []bool{true, false} {
		for _, share := range shares {
			if (share.UserID == req.PayerID) != payerFirst {
				continue
			}
			r := &models.Record{
				OwnerID:     share.UserID,
				Name:        req.Name,
				AmountCents: -share.AmountCents,
				Date:        req.Date,
				SplitID:     splitID,
				DebtorID:    share.UserID,
				CreditorID:  req.PayerID,
			}
			if payerFirst {
				r.CategoryID = req.CategoryID
			} else {
				r.Pending = true
			}
			records = append(records, r)
		}
	}
	return records
}
