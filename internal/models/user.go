package models

// User represents a registered account.
// The user ID is the owner key that scopes every Record and Category row.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the unique display name of the user.
	Name string

	// CreatedAt is the Unix timestamp when the user was created.
	CreatedAt int64
}
