package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ContributionLedger keeps the ordered funder sequence and the per-funder
// cumulative amounts in sync. The sequence may contain the same address
// several times, one entry per contribution.
//
// ContributionLedger is not safe for concurrent use; callers serialize access.
type ContributionLedger struct {
	funders []Address
	amounts map[Address]decimal.Decimal
}

// LedgerSnapshot is an opaque copy of a ledger taken for rollback
type LedgerSnapshot struct {
	funders []Address
	amounts map[Address]decimal.Decimal
}

// NewContributionLedger creates an empty ledger
func NewContributionLedger() *ContributionLedger {
	return &ContributionLedger{
		amounts: make(map[Address]decimal.Decimal),
	}
}

// RecordContribution appends funder to the sequence and adds amount to its total
func (l *ContributionLedger) RecordContribution(funder Address, amount decimal.Decimal) {
	l.funders = append(l.funders, funder)
	l.amounts[funder] = l.amounts[funder].Add(amount)
}

// AmountFunded returns the cumulative amount of funder, zero if it never contributed
func (l *ContributionLedger) AmountFunded(funder Address) decimal.Decimal {
	return l.amounts[funder]
}

// FunderAt returns the funder recorded at index
func (l *ContributionLedger) FunderAt(index uint64) (Address, error) {
	if index >= uint64(len(l.funders)) {
		return "", fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, index, len(l.funders))
	}
	return l.funders[index], nil
}

// Len returns the number of entries in the funder sequence
func (l *ContributionLedger) Len() int {
	return len(l.funders)
}

// Funders returns a copy of the funder sequence
func (l *ContributionLedger) Funders() []Address {
	out := make([]Address, len(l.funders))
	copy(out, l.funders)
	return out
}

// DistinctFunders returns each funder once, in order of first contribution
func (l *ContributionLedger) DistinctFunders() []Address {
	seen := make(map[Address]struct{}, len(l.amounts))
	out := make([]Address, 0, len(l.amounts))
	for _, funder := range l.funders {
		if _, ok := seen[funder]; ok {
			continue
		}
		seen[funder] = struct{}{}
		out = append(out, funder)
	}
	return out
}

// Total returns the sum of every funder's amount
func (l *ContributionLedger) Total() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range l.amounts {
		total = total.Add(amount)
	}
	return total
}

// ResetAll zeroes the amount of every funder in the sequence and clears the sequence
// It does not move funds.
func (l *ContributionLedger) ResetAll() {
	for _, funder := range l.DistinctFunders() {
		l.amounts[funder] = decimal.Zero
	}
	l.funders = nil
}

// Snapshot captures the current state for a later Restore
func (l *ContributionLedger) Snapshot() LedgerSnapshot {
	amounts := make(map[Address]decimal.Decimal, len(l.amounts))
	for funder, amount := range l.amounts {
		amounts[funder] = amount
	}
	return LedgerSnapshot{
		funders: l.Funders(),
		amounts: amounts,
	}
}

// Restore puts the ledger back into the state captured by snap
func (l *ContributionLedger) Restore(snap LedgerSnapshot) {
	l.funders = make([]Address, len(snap.funders))
	copy(l.funders, snap.funders)
	l.amounts = make(map[Address]decimal.Decimal, len(snap.amounts))
	for funder, amount := range snap.amounts {
		l.amounts[funder] = amount
	}
}
