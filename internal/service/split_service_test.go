package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/finbook/internal/models"
	"github.com/mmynk/finbook/internal/storage"
	"github.com/mmynk/finbook/internal/storage/sqlite"
)

type splitFixture struct {
	store  *sqlite.Store
	svc    *SplitService
	alice  *models.User
	bob    *models.User
	carol  *models.User
	dining *models.Category
}

// newSplitFixture creates a store with three users and a category owned by
// alice, the payer in most tests.
func newSplitFixture(t *testing.T) *splitFixture {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	f := &splitFixture{store: store, svc: NewSplitService(store)}

	for name, dst := range map[string]**models.User{"alice": &f.alice, "bob": &f.bob, "carol": &f.carol} {
		user := &models.User{Name: name}
		require.NoError(t, store.CreateUser(ctx, user))
		*dst = user
	}

	f.dining = &models.Category{Name: "dining"}
	require.NoError(t, store.Owner(f.alice.ID).CreateCategory(ctx, f.dining))
	return f
}

func (f *splitFixture) equalRequest(token string) *models.SplitRequest {
	return &models.SplitRequest{
		PayerID: f.alice.ID,
		Total:   decimal.RequireFromString("100.00"),
		Participants: []models.SplitParticipant{
			{UserID: f.alice.ID},
			{UserID: f.bob.ID},
			{UserID: f.carol.ID},
		},
		CategoryID:       f.dining.ID,
		Name:             "dinner",
		Date:             "2025-04-01",
		IdempotencyToken: token,
	}
}

func (f *splitFixture) recordCount(t *testing.T, ownerID string) int {
	t.Helper()

	records, err := f.store.Owner(ownerID).ListRecords(context.Background(), storage.RecordFilter{})
	require.NoError(t, err)
	return len(records)
}

func TestCreateSplit_EqualSplit(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()

	result, err := f.svc.CreateSplit(ctx, f.equalRequest("tok-equal"))
	require.NoError(t, err)
	require.Len(t, result.Records, 3)
	assert.NotEmpty(t, result.SplitID)

	// Payer first with the remainder; every record linked to the split.
	payer := result.Records[0]
	assert.Equal(t, f.alice.ID, payer.OwnerID)
	assert.Equal(t, int64(-3334), payer.AmountCents)
	assert.Equal(t, f.dining.ID, payer.CategoryID)
	assert.False(t, payer.Pending)

	var sum int64
	for _, r := range result.Records {
		sum += -r.AmountCents
		assert.Equal(t, result.SplitID, r.SplitID)
		assert.Equal(t, f.alice.ID, r.CreditorID)
		assert.Equal(t, r.OwnerID, r.DebtorID)
		if r.OwnerID != f.alice.ID {
			assert.Equal(t, int64(-3333), r.AmountCents)
			assert.True(t, r.Pending)
			assert.Empty(t, r.CategoryID, "participant records stay uncategorized")
		}
	}
	assert.Equal(t, int64(10000), sum, "shares must sum to the total")

	// One row landed with each owner.
	for _, u := range []*models.User{f.alice, f.bob, f.carol} {
		assert.Equal(t, 1, f.recordCount(t, u.ID))
	}
}

func TestCreateSplit_ExplicitShares(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()

	req := &models.SplitRequest{
		PayerID: f.alice.ID,
		Total:   decimal.RequireFromString("100.00"),
		Participants: []models.SplitParticipant{
			{UserID: f.alice.ID, Share: decimal.RequireFromString("40.00")},
			{UserID: f.bob.ID, Share: decimal.RequireFromString("60.00")},
		},
		Name:             "tickets",
		Date:             "2025-04-02",
		IdempotencyToken: "tok-explicit",
	}

	result, err := f.svc.CreateSplit(ctx, req)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, int64(-4000), result.Records[0].AmountCents)
	assert.Equal(t, int64(-6000), result.Records[1].AmountCents)

	t.Run("shares not summing to total rejected before reservation", func(t *testing.T) {
		bad := &models.SplitRequest{
			PayerID: f.alice.ID,
			Total:   decimal.RequireFromString("100.00"),
			Participants: []models.SplitParticipant{
				{UserID: f.alice.ID, Share: decimal.RequireFromString("40.00")},
				{UserID: f.bob.ID, Share: decimal.RequireFromString("50.00")},
			},
			Name:             "tickets",
			Date:             "2025-04-02",
			IdempotencyToken: "tok-bad-sum",
		}
		_, err := f.svc.CreateSplit(ctx, bad)
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))

		// The invalid request must not have burned its token.
		_, err = f.store.GetIdempotency(ctx, f.alice.ID, "tok-bad-sum")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestCreateSplit_IdempotentReplay(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()

	first, err := f.svc.CreateSplit(ctx, f.equalRequest("tok-replay"))
	require.NoError(t, err)

	second, err := f.svc.CreateSplit(ctx, f.equalRequest("tok-replay"))
	require.NoError(t, err)

	assert.Equal(t, first.SplitID, second.SplitID)
	require.Len(t, second.Records, len(first.Records))
	for i := range first.Records {
		assert.Equal(t, first.Records[i].ID, second.Records[i].ID)
		assert.Equal(t, first.Records[i].AmountCents, second.Records[i].AmountCents)
	}

	// No additional rows were inserted by the replay.
	for _, u := range []*models.User{f.alice, f.bob, f.carol} {
		assert.Equal(t, 1, f.recordCount(t, u.ID))
	}
}

func TestCreateSplit_StaleReservationPurged(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()

	// Simulate a crash between reservation and commit: the row exists with no
	// response.
	require.NoError(t, f.store.ReserveIdempotency(ctx, f.alice.ID, "tok-crashed"))

	result, err := f.svc.CreateSplit(ctx, f.equalRequest("tok-crashed"))
	require.NoError(t, err, "a stale reservation must not lock out the token")
	require.Len(t, result.Records, 3)

	entry, err := f.store.GetIdempotency(ctx, f.alice.ID, "tok-crashed")
	require.NoError(t, err)
	assert.Equal(t, models.StateCompleted, entry.State)
}

func TestCreateSplit_Validation(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		mutate   func(req *models.SplitRequest)
		wantKind ErrorKind
	}{
		{
			name:     "empty participants",
			mutate:   func(r *models.SplitRequest) { r.Participants = nil },
			wantKind: KindValidation,
		},
		{
			name: "duplicate participant",
			mutate: func(r *models.SplitRequest) {
				r.Participants = append(r.Participants, models.SplitParticipant{UserID: f.bob.ID})
			},
			wantKind: KindValidation,
		},
		{
			name: "payer splitting with only themselves",
			mutate: func(r *models.SplitRequest) {
				r.Participants = []models.SplitParticipant{{UserID: f.alice.ID}}
			},
			wantKind: KindValidation,
		},
		{
			name: "payer not among participants",
			mutate: func(r *models.SplitRequest) {
				r.Participants = r.Participants[1:]
			},
			wantKind: KindValidation,
		},
		{
			name: "unknown participant",
			mutate: func(r *models.SplitRequest) {
				r.Participants[2].UserID = "ghost"
			},
			wantKind: KindNotFound,
		},
		{
			name:     "unknown category",
			mutate:   func(r *models.SplitRequest) { r.CategoryID = "nonexistent" },
			wantKind: KindNotFound,
		},
		{
			name:     "zero total",
			mutate:   func(r *models.SplitRequest) { r.Total = decimal.Zero },
			wantKind: KindValidation,
		},
		{
			name:     "sub-cent total",
			mutate:   func(r *models.SplitRequest) { r.Total = decimal.RequireFromString("10.555") },
			wantKind: KindValidation,
		},
		{
			name:     "bad date",
			mutate:   func(r *models.SplitRequest) { r.Date = "04/01/2025" },
			wantKind: KindValidation,
		},
		{
			name:     "missing token",
			mutate:   func(r *models.SplitRequest) { r.IdempotencyToken = "" },
			wantKind: KindValidation,
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.equalRequest(fmt.Sprintf("tok-invalid-%d", i))
			tt.mutate(req)

			_, err := f.svc.CreateSplit(ctx, req)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err))

			// Failed validation never reserves the token.
			if req.IdempotencyToken != "" {
				_, err = f.store.GetIdempotency(ctx, req.PayerID, req.IdempotencyToken)
				assert.ErrorIs(t, err, storage.ErrNotFound)
			}
		})
	}

	// Nothing was persisted by any invalid request.
	for _, u := range []*models.User{f.alice, f.bob, f.carol} {
		assert.Equal(t, 0, f.recordCount(t, u.ID))
	}
}

func TestCreateSplit_CategoryOwnership(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()

	// Bob paying cannot use Alice's category: categories resolve within the
	// payer's scope only.
	req := &models.SplitRequest{
		PayerID: f.bob.ID,
		Total:   decimal.RequireFromString("50.00"),
		Participants: []models.SplitParticipant{
			{UserID: f.bob.ID},
			{UserID: f.carol.ID},
		},
		CategoryID:       f.dining.ID,
		Name:             "lunch",
		Date:             "2025-04-03",
		IdempotencyToken: "tok-foreign-category",
	}

	_, err := f.svc.CreateSplit(ctx, req)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCreateSplit_Concurrent(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	results := make([]*models.SplitResult, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.CreateSplit(ctx, f.equalRequest(fmt.Sprintf("tok-concurrent-%d", i)))
		}(i)
	}
	wg.Wait()

	splitIDs := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.Len(t, results[i].Records, 3)
		splitIDs[results[i].SplitID] = true

		var sum int64
		for _, r := range results[i].Records {
			sum += -r.AmountCents
		}
		assert.Equal(t, int64(10000), sum)
	}
	assert.Len(t, splitIDs, n, "every request produced its own split")

	for _, u := range []*models.User{f.alice, f.bob, f.carol} {
		assert.Equal(t, n, f.recordCount(t, u.ID))
	}
}
