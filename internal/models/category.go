package models

// Category represents a named classification scoped to one owner.
// Category names are unique per owner, and a category must exist before a
// record can reference it.
type Category struct {
	// ID is the unique identifier for the category (UUID format).
	ID string

	// OwnerID is the user who owns this category.
	OwnerID string

	// Name is the display name, unique within the owner's categories.
	Name string

	// IsIncome marks categories used for income entries rather than expenses.
	IsIncome bool

	// CreatedAt is the Unix timestamp when the category was created.
	CreatedAt int64
}
