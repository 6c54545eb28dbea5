// Package settlement moves native asset out of custody.
package settlement

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/simaogato/fundme-backend/internal/domain"
)

// Book implements domain.Settlement by crediting external account balances
// kept in process. It is the settlement used by development deployments.
type Book struct {
	mu       sync.Mutex
	balances map[domain.Address]decimal.Decimal
}

// NewBook creates an empty Book
func NewBook() *Book {
	return &Book{
		balances: make(map[domain.Address]decimal.Decimal),
	}
}

// Transfer credits amount wei to the given address
func (b *Book) Transfer(ctx context.Context, to domain.Address, amount decimal.Decimal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if to.IsZero() {
		return fmt.Errorf("%w: cannot transfer to the zero address", domain.ErrInvalidAddress)
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[to] = b.balances[to].Add(amount)
	return nil
}

// BalanceOf returns the amount credited to addr so far
func (b *Book) BalanceOf(addr domain.Address) decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[addr]
}
