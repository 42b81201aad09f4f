package models

import "encoding/json"

// EntryState is the lifecycle state of an idempotency ledger entry.
type EntryState int

const (
	// StateReserved marks an in-flight fan-out: the token is claimed but no
	// response has been committed. A reserved entry observed on a later lookup
	// is crash residue and must be purged before the token can be retried.
	StateReserved EntryState = iota

	// StateCompleted marks a finished fan-out whose response is stored for
	// verbatim replay.
	StateCompleted
)

// IdempotencyEntry represents one fan-out attempt in the idempotency ledger,
// keyed by (owner, token).
type IdempotencyEntry struct {
	// Token is the caller-supplied idempotency key, unique per owner.
	Token string

	// OwnerID is the user the fan-out was performed on behalf of.
	OwnerID string

	// State distinguishes a reservation from a committed entry.
	State EntryState

	// Response is the serialized result of the completed operation.
	// Empty while the entry is reserved.
	Response json.RawMessage

	// Status is the caller-supplied status code committed with the response.
	// The core stores and replays it without interpreting it.
	Status int

	// CreatedAt is the Unix timestamp when the token was reserved.
	CreatedAt int64
}
