package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/finbook/internal/models"
	"github.com/mmynk/finbook/internal/storage"
)

func TestIdempotencyLedger(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("reserve then commit", func(t *testing.T) {
		require.NoError(t, store.ReserveIdempotency(ctx, "alice", "token-1"))

		entry, err := store.GetIdempotency(ctx, "alice", "token-1")
		require.NoError(t, err)
		assert.Equal(t, models.StateReserved, entry.State)
		assert.Empty(t, entry.Response)
		assert.NotZero(t, entry.CreatedAt)

		payload := []byte(`{"split_id":"s-1"}`)
		require.NoError(t, store.CommitIdempotency(ctx, "alice", "token-1", payload, 201))

		entry, err = store.GetIdempotency(ctx, "alice", "token-1")
		require.NoError(t, err)
		assert.Equal(t, models.StateCompleted, entry.State)
		assert.JSONEq(t, `{"split_id":"s-1"}`, string(entry.Response))
		assert.Equal(t, 201, entry.Status)
	})

	t.Run("duplicate reserve conflicts", func(t *testing.T) {
		require.NoError(t, store.ReserveIdempotency(ctx, "alice", "token-2"))
		assert.ErrorIs(t, store.ReserveIdempotency(ctx, "alice", "token-2"), storage.ErrTokenExists)

		// A completed entry also blocks re-reservation.
		assert.ErrorIs(t, store.ReserveIdempotency(ctx, "alice", "token-1"), storage.ErrTokenExists)
	})

	t.Run("tokens are scoped per owner", func(t *testing.T) {
		require.NoError(t, store.ReserveIdempotency(ctx, "bob", "token-1"))

		_, err := store.GetIdempotency(ctx, "carol", "token-1")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete reservation frees the token", func(t *testing.T) {
		require.NoError(t, store.ReserveIdempotency(ctx, "alice", "token-3"))
		require.NoError(t, store.DeleteReservation(ctx, "alice", "token-3"))

		_, err := store.GetIdempotency(ctx, "alice", "token-3")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		require.NoError(t, store.ReserveIdempotency(ctx, "alice", "token-3"))
	})

	t.Run("delete never removes a completed entry", func(t *testing.T) {
		require.NoError(t, store.DeleteReservation(ctx, "alice", "token-1"))

		entry, err := store.GetIdempotency(ctx, "alice", "token-1")
		require.NoError(t, err)
		assert.Equal(t, models.StateCompleted, entry.State)
	})

	t.Run("commit requires a reserved row", func(t *testing.T) {
		err := store.CommitIdempotency(ctx, "alice", "nonexistent", []byte("{}"), 201)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		// Committing twice fails: the row is no longer reserved.
		err = store.CommitIdempotency(ctx, "alice", "token-1", []byte("{}"), 201)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}
