package fundme

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/fundme-backend/internal/domain"
)

// Converter prices native asset amounts in USD
type Converter interface {
	PriceFeed() domain.Address
	Convert(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)
}

// OwnerGuard gates privileged operations
type OwnerGuard interface {
	Owner() domain.Address
	EnsureOwner(caller domain.Address) error
}

// Stats is a consistent view of the ledger at one point in time
type Stats struct {
	Balance         decimal.Decimal
	FunderEntries   int
	DistinctFunders int
}

// FundMeService accepts contributions and lets the owner drain them
// Every operation runs inside one critical section over the ledger and the
// custodied balance; a failed operation leaves both untouched.
type FundMeService struct {
	Store      domain.LedgerStore
	Oracle     Converter
	Guard      OwnerGuard
	Settlement domain.Settlement
	Logger     zerolog.Logger

	mu      sync.RWMutex
	ledger  *domain.ContributionLedger
	balance decimal.Decimal
	now     func() time.Time
}

// NewFundMeService creates a new FundMeService instance from the persisted ledger state
func NewFundMeService(
	ctx context.Context,
	store domain.LedgerStore,
	oracle Converter,
	guard OwnerGuard,
	settlement domain.Settlement,
	logger zerolog.Logger,
) (*FundMeService, error) {
	state, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	ledger, err := state.Ledger()
	if err != nil {
		return nil, err
	}

	return &FundMeService{
		Store:      store,
		Oracle:     oracle,
		Guard:      guard,
		Settlement: settlement,
		Logger:     logger.With().Str("component", "fundme").Logger(),
		ledger:     ledger,
		balance:    state.Balance,
		now:        time.Now,
	}, nil
}

// Fund records a contribution of amount wei from caller
// Logic:
//  1. Price the amount in USD at the latest oracle answer
//  2. Reject it if it is worth less than domain.MinimumUSD
//  3. Persist the contribution, then apply it to the ledger and the balance
func (s *FundMeService) Fund(ctx context.Context, caller domain.Address, amount decimal.Decimal) (*domain.Contribution, error) {
	if caller.IsZero() {
		return nil, fmt.Errorf("%w: caller cannot be the zero address", domain.ErrInvalidAddress)
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// 1. Price the contribution
	usdValue, err := s.Oracle.Convert(ctx, amount)
	if err != nil {
		s.Logger.Warn().Err(err).Str("caller", caller.String()).Msg("fund aborted: price unavailable")
		return nil, err
	}

	// 2. Enforce the threshold
	if usdValue.LessThan(domain.MinimumUSD) {
		s.Logger.Info().
			Str("caller", caller.String()).
			Str("amount", amount.String()).
			Str("usd_value", usdValue.String()).
			Msg("fund rejected: below minimum")
		return nil, domain.ErrInsufficientContribution
	}

	// 3. Persist and apply
	contribution := &domain.Contribution{
		ID:        uuid.New(),
		Funder:    caller,
		Amount:    amount,
		USDValue:  usdValue,
		CreatedAt: s.now(),
	}
	if err := contribution.Validate(); err != nil {
		return nil, err
	}

	if err := s.Store.SaveContribution(ctx, contribution); err != nil {
		return nil, fmt.Errorf("failed to save contribution: %w", err)
	}

	s.ledger.RecordContribution(caller, amount)
	s.balance = s.balance.Add(amount)

	s.Logger.Info().
		Str("caller", caller.String()).
		Str("amount", amount.String()).
		Str("usd_value", usdValue.String()).
		Str("balance", s.balance.String()).
		Msg("fund accepted")

	return contribution, nil
}

// Withdraw transfers the whole custodied balance to the owner and clears the ledger
// Logic:
//  1. Only the owner may withdraw
//  2. A zero balance is a no-op
//  3. Reset the ledger, then persist the reset and settle the transfer as one unit
//  4. If any part fails, restore the ledger and report the failure
func (s *FundMeService) Withdraw(ctx context.Context, caller domain.Address) (*domain.Withdrawal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 1. Access control
	if err := s.Guard.EnsureOwner(caller); err != nil {
		s.Logger.Warn().Str("caller", caller.String()).Msg("withdraw rejected: not owner")
		return nil, err
	}

	owner := s.Guard.Owner()

	// 2. Nothing to move; the no-op is not recorded
	if s.balance.IsZero() {
		s.Logger.Debug().Msg("withdraw: balance already empty")
		return &domain.Withdrawal{Owner: owner, Amount: decimal.Zero, CreatedAt: s.now()}, nil
	}

	withdrawal := &domain.Withdrawal{
		ID:          uuid.New(),
		Owner:       owner,
		Amount:      s.balance,
		FunderCount: s.ledger.Len(),
		CreatedAt:   s.now(),
	}

	if err := withdrawal.Validate(); err != nil {
		return nil, err
	}

	// 3. Reset and settle
	snapshot := s.ledger.Snapshot()
	s.ledger.ResetAll()

	amount := s.balance
	settle := func(ctx context.Context) error {
		if err := s.Settlement.Transfer(ctx, owner, amount); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrTransferFailed, err)
		}
		return nil
	}

	if err := s.Store.Drain(ctx, withdrawal, settle); err != nil {
		// 4. Roll back
		s.ledger.Restore(snapshot)
		s.Logger.Error().Err(err).Str("amount", amount.String()).Msg("withdraw rolled back")
		if errors.Is(err, domain.ErrTransferFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to drain ledger: %w", err)
	}

	s.balance = decimal.Zero

	s.Logger.Info().
		Str("owner", owner.String()).
		Str("amount", amount.String()).
		Int("funder_entries", withdrawal.FunderCount).
		Msg("withdraw completed")

	return withdrawal, nil
}

// GetPriceFeed returns the reference of the price feed
func (s *FundMeService) GetPriceFeed() domain.Address {
	return s.Oracle.PriceFeed()
}

// GetOwner returns the owner address
func (s *FundMeService) GetOwner() domain.Address {
	return s.Guard.Owner()
}

// GetFunder returns the funder at index in the funder sequence
func (s *FundMeService) GetFunder(index uint64) (domain.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.FunderAt(index)
}

// GetAddressToAmountFunded returns the cumulative amount funded by addr
func (s *FundMeService) GetAddressToAmountFunded(addr domain.Address) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.AmountFunded(addr)
}

// Balance returns the custodied balance
func (s *FundMeService) Balance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance
}

// Stats returns balance and funder counts read under one lock
func (s *FundMeService) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Balance:         s.balance,
		FunderEntries:   s.ledger.Len(),
		DistinctFunders: len(s.ledger.DistinctFunders()),
	}
}
