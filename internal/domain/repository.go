package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// LedgerStore defines the persistence operations of the custody ledger
// Each write is atomic: it either fully applies or leaves the store unchanged.
type LedgerStore interface {
	// Load returns the current persisted ledger state
	Load(ctx context.Context) (*LedgerState, error)

	// SaveContribution appends the funder entry, adds to its amount and to the balance
	SaveContribution(ctx context.Context, c *Contribution) error

	// Drain zeroes every amount, clears the funder sequence, sets the balance to zero
	// and records w. settle runs inside the same unit of work; when it fails
	// nothing is committed and its error is returned.
	Drain(ctx context.Context, w *Withdrawal, settle func(ctx context.Context) error) error

	// ListContributions retrieves a page of contributions, most recent first
	ListContributions(ctx context.Context, limit, offset int) ([]*Contribution, error)

	// ListWithdrawals retrieves a page of withdrawals, most recent first
	ListWithdrawals(ctx context.Context, limit, offset int) ([]*Withdrawal, error)
}

// PriceRoundRepository defines the persistence operations of price feed rounds
type PriceRoundRepository interface {
	// Add stores a new round
	Add(ctx context.Context, round *RoundData) error

	// GetLatest retrieves the round with the highest round ID of a feed
	GetLatest(ctx context.Context, feed Address) (*RoundData, error)
}

// Settlement moves native asset out of custody
type Settlement interface {
	// Transfer sends amount wei to the given address
	Transfer(ctx context.Context, to Address, amount decimal.Decimal) error
}
