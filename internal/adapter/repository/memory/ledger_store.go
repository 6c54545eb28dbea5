// Package memory provides in-process implementations of the domain repositories.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/simaogato/fundme-backend/internal/domain"
)

// LedgerStore implements domain.LedgerStore in memory
type LedgerStore struct {
	mu            sync.Mutex
	funders       []domain.Address
	amounts       map[domain.Address]decimal.Decimal
	balance       decimal.Decimal
	contributions []*domain.Contribution
	withdrawals   []*domain.Withdrawal
}

// NewLedgerStore creates an empty in-memory ledger store
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		amounts: make(map[domain.Address]decimal.Decimal),
	}
}

// Load returns a copy of the current state
func (s *LedgerStore) Load(ctx context.Context) (*domain.LedgerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &domain.LedgerState{
		Funders: make([]domain.Address, len(s.funders)),
		Amounts: make(map[domain.Address]decimal.Decimal, len(s.amounts)),
		Balance: s.balance,
	}
	copy(state.Funders, s.funders)
	for funder, amount := range s.amounts {
		state.Amounts[funder] = amount
	}
	return state, nil
}

// SaveContribution records c
func (s *LedgerStore) SaveContribution(ctx context.Context, c *domain.Contribution) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.funders = append(s.funders, c.Funder)
	s.amounts[c.Funder] = s.amounts[c.Funder].Add(c.Amount)
	s.balance = s.balance.Add(c.Amount)
	s.contributions = append(s.contributions, c)
	return nil
}

// Drain clears the ledger once settle succeeds
// The lock is held while settle runs, so no other write can interleave.
func (s *LedgerStore) Drain(ctx context.Context, w *domain.Withdrawal, settle func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := w.Validate(); err != nil {
		return err
	}
	if settle == nil {
		return errors.New("settle function is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := settle(ctx); err != nil {
		return err
	}

	for funder := range s.amounts {
		s.amounts[funder] = decimal.Zero
	}
	s.funders = nil
	s.balance = decimal.Zero
	s.withdrawals = append(s.withdrawals, w)
	return nil
}

// ListContributions retrieves a page of contributions, most recent first
func (s *LedgerStore) ListContributions(ctx context.Context, limit, offset int) ([]*domain.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return page(s.contributions, limit, offset), nil
}

// ListWithdrawals retrieves a page of withdrawals, most recent first
func (s *LedgerStore) ListWithdrawals(ctx context.Context, limit, offset int) ([]*domain.Withdrawal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return page(s.withdrawals, limit, offset), nil
}

// page returns up to limit items, newest first, skipping the offset newest
func page[T any](items []T, limit, offset int) []T {
	out := make([]T, 0)
	if offset < 0 {
		offset = 0
	}
	for i := len(items) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, items[i])
	}
	return out
}
