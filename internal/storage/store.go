// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/finbook/internal/models"
)

// Sentinel errors returned by Store implementations. Callers match them with
// errors.Is and translate them into their own error vocabulary.
var (
	// ErrNotFound means the requested row does not exist within the caller's
	// owner scope.
	ErrNotFound = errors.New("not found")

	// ErrTokenExists means an idempotency row (reserved or completed) already
	// exists for the (owner, token) pair.
	ErrTokenExists = errors.New("idempotency token already exists")

	// ErrNameExists means a uniqueness constraint on a name was violated.
	ErrNameExists = errors.New("name already exists")

	// ErrCategoryInUse means a category cannot be deleted while records
	// still reference it.
	ErrCategoryInUse = errors.New("category is referenced by records")

	// ErrAlreadySettled means a record's settle flag was already set.
	ErrAlreadySettled = errors.New("record already settled")
)

// Store defines the storage operations consumed by the service layer.
// This abstraction allows swapping storage backends without changing services.
//
// All mutations run under the store's exclusive write slot; multi-statement
// operations are atomic. Reads run under the shared slot and never observe a
// partially committed mutation.
type Store interface {
	// Owner returns an accessor scoped to a single owner. All per-user reads
	// and writes go through it so the owner predicate cannot be omitted.
	Owner(userID string) OwnerStore

	// CreateUser persists a new user, populating ID and CreatedAt if unset.
	// Returns ErrNameExists if the name is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by ID. Returns ErrNotFound if absent.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// UserExists reports whether a user ID resolves to a known user.
	UserExists(ctx context.Context, userID string) (bool, error)

	// ReserveIdempotency inserts a reserved ledger row for (owner, token).
	// Returns ErrTokenExists if any row already exists for the pair.
	ReserveIdempotency(ctx context.Context, ownerID, token string) error

	// CommitIdempotency writes the response and status onto a reserved row,
	// completing it. Returns ErrNotFound if no reserved row exists.
	CommitIdempotency(ctx context.Context, ownerID, token string, response []byte, status int) error

	// DeleteReservation removes a reserved (never a completed) row so the
	// token can be retried from scratch.
	DeleteReservation(ctx context.Context, ownerID, token string) error

	// GetIdempotency retrieves the ledger entry for (owner, token).
	// Returns ErrNotFound if absent.
	GetIdempotency(ctx context.Context, ownerID, token string) (*models.IdempotencyEntry, error)

	// CreateSplitRecords inserts the given records as one atomic unit: either
	// every record is durably applied or none are. IDs and CreatedAt are
	// populated if unset.
	CreateSplitRecords(ctx context.Context, records []*models.Record) error

	// Close releases any resources held by the store.
	Close() error
}

// OwnerStore is the owner-scoped accessor returned by Store.Owner.
// Every statement it issues carries the owner predicate.
type OwnerStore interface {
	// CreateRecord persists a new record for the owner.
	CreateRecord(ctx context.Context, record *models.Record) error

	// GetRecord retrieves one of the owner's records by ID.
	GetRecord(ctx context.Context, recordID string) (*models.Record, error)

	// ListRecords retrieves the owner's records matching the filter,
	// newest date first.
	ListRecords(ctx context.Context, filter RecordFilter) ([]models.Record, error)

	// UpdateRecord updates the name, amount, category and date of one of the
	// owner's records. Returns ErrNotFound if the record is not the owner's.
	UpdateRecord(ctx context.Context, record *models.Record) error

	// DeleteRecord deletes one of the owner's records.
	DeleteRecord(ctx context.Context, recordID string) error

	// SettleRecord marks one of the owner's records as settled.
	// Returns ErrAlreadySettled if it was settled before.
	SettleRecord(ctx context.Context, recordID string) error

	// CreateCategory persists a new category for the owner.
	// Returns ErrNameExists if the owner already has a category by that name.
	CreateCategory(ctx context.Context, category *models.Category) error

	// GetCategory retrieves one of the owner's categories by ID.
	GetCategory(ctx context.Context, categoryID string) (*models.Category, error)

	// ListCategories retrieves all of the owner's categories, by name.
	ListCategories(ctx context.Context) ([]models.Category, error)

	// DeleteCategory deletes one of the owner's categories.
	// Returns ErrCategoryInUse while records still reference it.
	DeleteCategory(ctx context.Context, categoryID string) error
}

// RecordFilter narrows a ListRecords query. Zero values mean "no constraint"
// except Limit, which callers should set to a sane page size.
type RecordFilter struct {
	// StartDate and EndDate bound the record date (inclusive, YYYY-MM-DD).
	StartDate string
	EndDate   string

	// Pending and Settled filter on the split lifecycle flags when non-nil.
	Pending *bool
	Settled *bool

	// Limit and Offset page through results.
	Limit  int
	Offset int
}
