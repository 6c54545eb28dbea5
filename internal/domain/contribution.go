package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Contribution is an accepted fund call
type Contribution struct {
	ID        uuid.UUID
	Funder    Address
	Amount    decimal.Decimal // wei
	USDValue  decimal.Decimal // 18-decimal fixed point, at the price used for acceptance
	CreatedAt time.Time
}

// Validate ensures the contribution adheres to domain rules
func (c *Contribution) Validate() error {
	if c.ID == uuid.Nil {
		return errors.New("contribution ID cannot be empty")
	}
	if c.Funder.IsZero() {
		return errors.New("contribution funder cannot be the zero address")
	}
	if !c.Amount.IsPositive() {
		return errors.New("contribution amount must be positive")
	}
	// Amounts below the threshold never reach persistence
	if c.USDValue.LessThan(MinimumUSD) {
		return ErrInsufficientContribution
	}
	return nil
}

// Withdrawal is a successful owner drain of the custodied balance
type Withdrawal struct {
	ID          uuid.UUID
	Owner       Address
	Amount      decimal.Decimal // wei
	FunderCount int             // entries in the funder sequence before the reset
	CreatedAt   time.Time
}

// Validate ensures the withdrawal adheres to domain rules
func (w *Withdrawal) Validate() error {
	if w.ID == uuid.Nil {
		return errors.New("withdrawal ID cannot be empty")
	}
	if w.Owner.IsZero() {
		return errors.New("withdrawal owner cannot be the zero address")
	}
	if !w.Amount.IsPositive() {
		return errors.New("withdrawal amount must be positive")
	}
	return nil
}

// LedgerState is the persisted form of the ledger
type LedgerState struct {
	Funders []Address                   // funder sequence, in contribution order
	Amounts map[Address]decimal.Decimal // cumulative amount per funder
	Balance decimal.Decimal             // custodied balance
}

// Ledger rebuilds a ContributionLedger from the persisted state
// It fails with ErrLedgerCorrupted when the amounts do not add up to Balance.
func (s *LedgerState) Ledger() (*ContributionLedger, error) {
	ledger := NewContributionLedger()
	ledger.funders = append(ledger.funders, s.Funders...)
	for funder, amount := range s.Amounts {
		ledger.amounts[funder] = amount
	}

	if !ledger.Total().Equal(s.Balance) {
		return nil, ErrLedgerCorrupted
	}
	return ledger, nil
}
