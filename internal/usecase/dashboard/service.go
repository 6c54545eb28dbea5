package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/fundme-backend/internal/domain"
	"github.com/simaogato/fundme-backend/internal/usecase/fundme"
	"github.com/simaogato/fundme-backend/internal/usecase/oracle"
)

// Summary is an overview of the custody ledger
type Summary struct {
	Owner           domain.Address
	PriceFeed       domain.Address
	Balance         decimal.Decimal // wei
	BalanceUSD      decimal.Decimal // 18-decimal fixed point
	Price           decimal.Decimal // USD per ether, 18-decimal fixed point
	FunderEntries   int
	DistinctFunders int
}

// PriceReader reads the current 18-decimal price
type PriceReader interface {
	LatestPrice(ctx context.Context) (decimal.Decimal, error)
}

// DashboardService handles read-only reporting operations
type DashboardService struct {
	FundMe      *fundme.FundMeService
	Prices      PriceReader
	LedgerStore domain.LedgerStore
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(
	fundMe *fundme.FundMeService,
	prices PriceReader,
	ledgerStore domain.LedgerStore,
) *DashboardService {
	return &DashboardService{
		FundMe:      fundMe,
		Prices:      prices,
		LedgerStore: ledgerStore,
	}
}

// GetSummary reports the balance and its current USD value
// Logic:
//   - Balance and funder counts come from one consistent read of the ledger
//   - Price is read fresh; if the oracle is down the summary fails
//   - BalanceUSD: Balance * Price / 1e18
func (s *DashboardService) GetSummary(ctx context.Context) (*Summary, error) {
	stats := s.FundMe.Stats()

	price, err := s.Prices.LatestPrice(ctx)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Owner:           s.FundMe.GetOwner(),
		PriceFeed:       s.FundMe.GetPriceFeed(),
		Balance:         stats.Balance,
		BalanceUSD:      oracle.ConvertAt(stats.Balance, price),
		Price:           price,
		FunderEntries:   stats.FunderEntries,
		DistinctFunders: stats.DistinctFunders,
	}, nil
}

// ListContributions returns a page of accepted contributions, most recent first
func (s *DashboardService) ListContributions(ctx context.Context, limit, offset int) ([]*domain.Contribution, error) {
	if err := validatePage(limit, offset); err != nil {
		return nil, err
	}
	contributions, err := s.LedgerStore.ListContributions(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	return contributions, nil
}

// ListWithdrawals returns a page of withdrawals, most recent first
func (s *DashboardService) ListWithdrawals(ctx context.Context, limit, offset int) ([]*domain.Withdrawal, error) {
	if err := validatePage(limit, offset); err != nil {
		return nil, err
	}
	withdrawals, err := s.LedgerStore.ListWithdrawals(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	return withdrawals, nil
}

func validatePage(limit, offset int) error {
	if limit <= 0 {
		return errors.New("limit must be positive")
	}
	if offset < 0 {
		return errors.New("offset must be non-negative")
	}
	return nil
}
