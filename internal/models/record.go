package models

import "github.com/shopspring/decimal"

// Record represents a single financial entry owned by one user.
// Records are created directly or fanned out by a split; split-created records
// carry settlement metadata linking them back to the originating split.
type Record struct {
	// ID is the unique identifier for the record (UUID format).
	ID string

	// OwnerID is the user who owns this record. Every query touching records
	// must be predicated on this field.
	OwnerID string

	// Name is the free-text description of the entry.
	Name string

	// AmountCents is the monetary amount in signed integer cents.
	// Negative amounts are expenses, positive amounts are income.
	AmountCents int64

	// CategoryID references an owner-scoped category. Empty means uncategorized;
	// participant records created by a split are always uncategorized because
	// the category belongs to the payer.
	CategoryID string

	// Date is the entry date in YYYY-MM-DD format.
	Date string

	// Pending marks a debt created by a split that the owner has not settled yet.
	Pending bool

	// SplitID links the record to the split fan-out that created it, if any.
	SplitID string

	// Settled marks a pending record whose debt has been paid back.
	Settled bool

	// DebtorID and CreditorID identify who owes whom for split-created records.
	DebtorID   string
	CreditorID string

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64
}

// Amount returns the record amount as an exact decimal value.
func (r *Record) Amount() decimal.Decimal {
	return decimal.New(r.AmountCents, -2)
}
