// Package calculator computes per-participant split amounts.
//
// All arithmetic is in integer cents so a split never loses or invents a
// fraction of a cent: for equal splits the truncation remainder is assigned
// entirely to the initiating payer, for explicit shares the sum must equal the
// total exactly.
package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Participant is one member of a split, identified by user ID.
// ShareCents is meaningful only when Explicit is true; a request must be
// explicit for all participants or for none.
type Participant struct {
	UserID     string
	ShareCents int64
	Explicit   bool
}

// Share is the computed amount one participant owes.
type Share struct {
	UserID      string
	AmountCents int64
}

// ToCents converts a decimal amount into integer cents, rejecting values with
// more than two decimal places.
func ToCents(amount decimal.Decimal) (int64, error) {
	cents := amount.Mul(decimal.NewFromInt(100))
	if !cents.IsInteger() {
		return 0, fmt.Errorf("amount %s has sub-cent precision", amount)
	}
	return cents.IntPart(), nil
}

// FromCents converts integer cents back into a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ComputeShares calculates each participant's portion of totalCents.
//
// Equal mode (no participant explicit): the total is divided by the
// participant count; the payer receives the base share plus the entire
// truncation remainder, so the shares always sum to the total.
//
// Explicit mode (every participant explicit): the shares are taken as given
// and must sum to exactly the total.
//
// The returned shares preserve the input participant order. The payer must be
// one of the participants.
func ComputeShares(totalCents int64, participants []Participant, payerID string) ([]Share, error) {
	if totalCents <= 0 {
		return nil, fmt.Errorf("total must be positive")
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}

	explicit := 0
	payerIndex := -1
	for i, p := range participants {
		if p.Explicit {
			explicit++
		}
		if p.UserID == payerID {
			payerIndex = i
		}
	}
	if payerIndex == -1 {
		return nil, fmt.Errorf("payer %s must be one of the participants", payerID)
	}

	shares := make([]Share, len(participants))

	switch explicit {
	case 0:
		n := int64(len(participants))
		base := totalCents / n
		remainder := totalCents - base*n
		for i, p := range participants {
			shares[i] = Share{UserID: p.UserID, AmountCents: base}
		}
		// Remainder goes to the initiator as a single adjustment.
		shares[payerIndex].AmountCents += remainder

	case len(participants):
		var sum int64
		for i, p := range participants {
			if p.ShareCents <= 0 {
				return nil, fmt.Errorf("share for %s must be positive", p.UserID)
			}
			shares[i] = Share{UserID: p.UserID, AmountCents: p.ShareCents}
			sum += p.ShareCents
		}
		if sum != totalCents {
			return nil, fmt.Errorf("shares sum to %d cents, want %d", sum, totalCents)
		}

	default:
		return nil, fmt.Errorf("cannot mix explicit shares with equal splitting")
	}

	return shares, nil
}
