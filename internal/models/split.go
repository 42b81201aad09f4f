package models

import "github.com/shopspring/decimal"

// SplitParticipant is one participant in a split request.
type SplitParticipant struct {
	// UserID identifies the participant; it must resolve to a known user.
	UserID string `json:"user_id"`

	// Share is this participant's explicit portion of the total.
	// A zero share marks the participant for equal splitting; a request must
	// use explicit shares for all participants or for none.
	Share decimal.Decimal `json:"share"`
}

// SplitRequest describes one fan-out operation: the payer fronts Total and each
// participant owes their share back.
type SplitRequest struct {
	// PayerID is the initiating user. The payer must appear in Participants
	// and absorbs any rounding remainder from an equal split.
	PayerID string `json:"payer_id"`

	// Total is the full amount paid, in whole cents (at most two decimal places).
	Total decimal.Decimal `json:"total"`

	// Participants is the set of users splitting the total, payer included.
	Participants []SplitParticipant `json:"participants"`

	// CategoryID optionally classifies the payer's record. It must exist and
	// be owned by the payer.
	CategoryID string `json:"category_id,omitempty"`

	// Name is the free-text description copied onto every created record.
	Name string `json:"name"`

	// Date is the entry date in YYYY-MM-DD format.
	Date string `json:"date"`

	// IdempotencyToken makes the fan-out safe to retry verbatim.
	IdempotencyToken string `json:"idempotency_token"`
}

// SplitResult is the committed outcome of a split fan-out: the records created,
// one per participant. Replaying the same token returns this result verbatim.
type SplitResult struct {
	// SplitID groups the created records.
	SplitID string `json:"split_id"`

	// Records are the created entries, payer first, in participant order.
	Records []Record `json:"records"`
}
