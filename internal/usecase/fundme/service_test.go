package fundme

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/fundme-backend/internal/adapter/repository/memory"
	"github.com/simaogato/fundme-backend/internal/adapter/settlement"
	"github.com/simaogato/fundme-backend/internal/domain"
	"github.com/simaogato/fundme-backend/internal/usecase/access"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	owner    = domain.MustParseAddress("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	alice    = domain.MustParseAddress("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	bob      = domain.MustParseAddress("0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc")
	feedAddr = domain.MustParseAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")

	// $2000 per ether, 18 decimals
	ethPrice = decimal.NewFromInt(2000).Mul(domain.WeiPerEther)
	oneEther = domain.WeiPerEther
)

// fixedPriceConverter prices amounts at a constant 18-decimal price
type fixedPriceConverter struct {
	price decimal.Decimal
	err   error
	calls int
}

func (c *fixedPriceConverter) PriceFeed() domain.Address {
	return feedAddr
}

func (c *fixedPriceConverter) Convert(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	c.calls++
	if c.err != nil {
		return decimal.Zero, c.err
	}
	quotient, _ := amount.Mul(c.price).QuoRem(domain.WeiPerEther, 0)
	return quotient, nil
}

// MockSettlement is a mock implementation of Settlement for testing
type MockSettlement struct {
	mock.Mock
}

func (m *MockSettlement) Transfer(ctx context.Context, to domain.Address, amount decimal.Decimal) error {
	args := m.Called(ctx, to, amount)
	return args.Error(0)
}

// MockLedgerStore is a mock implementation of LedgerStore for testing
type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) Load(ctx context.Context) (*domain.LedgerState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerState), args.Error(1)
}

func (m *MockLedgerStore) SaveContribution(ctx context.Context, c *domain.Contribution) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockLedgerStore) Drain(ctx context.Context, w *domain.Withdrawal, settle func(ctx context.Context) error) error {
	args := m.Called(ctx, w, settle)
	return args.Error(0)
}

func (m *MockLedgerStore) ListContributions(ctx context.Context, limit, offset int) ([]*domain.Contribution, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Contribution), args.Error(1)
}

func (m *MockLedgerStore) ListWithdrawals(ctx context.Context, limit, offset int) ([]*domain.Withdrawal, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Withdrawal), args.Error(1)
}

type fixture struct {
	service *FundMeService
	store   *memory.LedgerStore
	book    *settlement.Book
	oracle  *fixedPriceConverter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	guard, err := access.NewGuard(owner)
	require.NoError(t, err)

	f := &fixture{
		store:  memory.NewLedgerStore(),
		book:   settlement.NewBook(),
		oracle: &fixedPriceConverter{price: ethPrice},
	}
	f.service, err = NewFundMeService(context.Background(), f.store, f.oracle, guard, f.book, zerolog.Nop())
	require.NoError(t, err)
	return f
}

// assertInvariant checks that the custodied balance equals the sum of the ledger
func assertInvariant(t *testing.T, s *FundMeService) {
	t.Helper()
	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.True(t, s.ledger.Total().Equal(s.balance), "ledger total %s != balance %s", s.ledger.Total(), s.balance)
}

func TestNewFundMeService_LoadsState(t *testing.T) {
	ctx := context.Background()
	store := new(MockLedgerStore)
	guard, _ := access.NewGuard(owner)

	store.On("Load", ctx).Return(&domain.LedgerState{
		Funders: []domain.Address{alice, alice},
		Amounts: map[domain.Address]decimal.Decimal{alice: oneEther.Mul(decimal.NewFromInt(2))},
		Balance: oneEther.Mul(decimal.NewFromInt(2)),
	}, nil)

	service, err := NewFundMeService(ctx, store, &fixedPriceConverter{price: ethPrice}, guard, settlement.NewBook(), zerolog.Nop())

	require.NoError(t, err)
	assert.True(t, oneEther.Mul(decimal.NewFromInt(2)).Equal(service.Balance()))
	funder, err := service.GetFunder(1)
	require.NoError(t, err)
	assert.Equal(t, alice, funder)
}

func TestNewFundMeService_Failures(t *testing.T) {
	ctx := context.Background()
	guard, _ := access.NewGuard(owner)

	t.Run("corrupted state", func(t *testing.T) {
		store := new(MockLedgerStore)
		store.On("Load", ctx).Return(&domain.LedgerState{
			Funders: []domain.Address{alice},
			Amounts: map[domain.Address]decimal.Decimal{alice: oneEther},
			Balance: decimal.Zero,
		}, nil)

		_, err := NewFundMeService(ctx, store, &fixedPriceConverter{}, guard, settlement.NewBook(), zerolog.Nop())
		assert.ErrorIs(t, err, domain.ErrLedgerCorrupted)
	})

	t.Run("load error", func(t *testing.T) {
		store := new(MockLedgerStore)
		store.On("Load", ctx).Return(nil, errors.New("connection refused"))

		_, err := NewFundMeService(ctx, store, &fixedPriceConverter{}, guard, settlement.NewBook(), zerolog.Nop())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load ledger")
	})
}

func TestFund_Success(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	contribution, err := f.service.Fund(ctx, alice, oneEther)

	require.NoError(t, err)
	assert.Equal(t, alice, contribution.Funder)
	assert.True(t, oneEther.Equal(contribution.Amount))
	assert.Equal(t, "2000000000000000000000", contribution.USDValue.String())

	assert.True(t, oneEther.Equal(f.service.GetAddressToAmountFunded(alice)))
	funder, err := f.service.GetFunder(0)
	require.NoError(t, err)
	assert.Equal(t, alice, funder)
	assert.True(t, oneEther.Equal(f.service.Balance()))

	// The store saw the same contribution
	state, err := f.store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Address{alice}, state.Funders)
	assert.True(t, oneEther.Equal(state.Balance))

	assertInvariant(t, f.service)
}

func TestFund_BelowMinimum(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
	}{
		{name: "zero amount", amount: decimal.Zero},
		{name: "one wei", amount: decimal.NewFromInt(1)},
		// 0.025 ether is exactly $50, one wei less is not enough
		{name: "one wei under threshold", amount: decimal.RequireFromString("24999999999999999")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)

			_, err := f.service.Fund(ctx, alice, tt.amount)

			assert.ErrorIs(t, err, domain.ErrInsufficientContribution)
			assert.True(t, f.service.Balance().IsZero())
			assert.True(t, f.service.GetAddressToAmountFunded(alice).IsZero())
			_, err = f.service.GetFunder(0)
			assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)

			state, err := f.store.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, state.Funders)
		})
	}
}

func TestFund_ExactlyAtMinimum(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Fund(context.Background(), alice, decimal.RequireFromString("25000000000000000"))

	assert.NoError(t, err)
}

func TestFund_InvalidInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Fund(context.Background(), alice, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.service.Fund(context.Background(), domain.ZeroAddress, oneEther)
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)

	assert.Equal(t, 0, f.oracle.calls)
}

func TestFund_RejectsAmountAboveUint256(t *testing.T) {
	f := newFixture(t)

	for _, amount := range []decimal.Decimal{
		domain.MaxAmount.Add(decimal.NewFromInt(1)),
		decimal.New(1, 10000000),
	} {
		_, err := f.service.Fund(context.Background(), alice, amount)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	}

	assert.Equal(t, 0, f.oracle.calls)
	assert.True(t, f.service.Balance().IsZero())
}

func TestFund_OracleUnavailable(t *testing.T) {
	f := newFixture(t)
	f.oracle.err = domain.ErrOracleUnavailable

	_, err := f.service.Fund(context.Background(), alice, oneEther)

	assert.ErrorIs(t, err, domain.ErrOracleUnavailable)
	assert.True(t, f.service.Balance().IsZero())
	assert.True(t, f.service.GetAddressToAmountFunded(alice).IsZero())
}

func TestFund_StoreFailureLeavesLedgerUnchanged(t *testing.T) {
	ctx := context.Background()
	store := new(MockLedgerStore)
	guard, _ := access.NewGuard(owner)

	store.On("Load", ctx).Return(&domain.LedgerState{}, nil)
	store.On("SaveContribution", ctx, mock.AnythingOfType("*domain.Contribution")).Return(errors.New("disk full"))

	service, err := NewFundMeService(ctx, store, &fixedPriceConverter{price: ethPrice}, guard, settlement.NewBook(), zerolog.Nop())
	require.NoError(t, err)

	_, err = service.Fund(ctx, alice, oneEther)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save contribution")
	assert.True(t, service.Balance().IsZero())
	_, err = service.GetFunder(0)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
}

func TestFund_RepeatedContributionKeepsDuplicates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v1 := oneEther
	v2 := decimal.RequireFromString("300000000000000000")

	_, err := f.service.Fund(ctx, alice, v1)
	require.NoError(t, err)
	_, err = f.service.Fund(ctx, alice, v2)
	require.NoError(t, err)

	assert.True(t, v1.Add(v2).Equal(f.service.GetAddressToAmountFunded(alice)))
	first, err := f.service.GetFunder(0)
	require.NoError(t, err)
	second, err := f.service.GetFunder(1)
	require.NoError(t, err)
	assert.Equal(t, alice, first)
	assert.Equal(t, alice, second)

	stats := f.service.Stats()
	assert.Equal(t, 2, stats.FunderEntries)
	assert.Equal(t, 1, stats.DistinctFunders)
	assertInvariant(t, f.service)
}

func TestWithdraw_NotOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.service.Fund(ctx, alice, oneEther)
	require.NoError(t, err)

	_, err = f.service.Withdraw(ctx, alice)

	assert.ErrorIs(t, err, domain.ErrNotOwner)
	assert.True(t, oneEther.Equal(f.service.Balance()))
	assert.True(t, oneEther.Equal(f.service.GetAddressToAmountFunded(alice)))
	funder, err := f.service.GetFunder(0)
	require.NoError(t, err)
	assert.Equal(t, alice, funder)
	assert.True(t, f.book.BalanceOf(alice).IsZero())
	assert.True(t, f.book.BalanceOf(owner).IsZero())
}

func TestWithdraw_MultipleFunders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	funders := []domain.Address{owner, alice, bob, alice}
	for _, funder := range funders {
		_, err := f.service.Fund(ctx, funder, oneEther)
		require.NoError(t, err)
	}
	startBalance := f.service.Balance()

	withdrawal, err := f.service.Withdraw(ctx, owner)

	require.NoError(t, err)
	assert.True(t, startBalance.Equal(withdrawal.Amount))
	assert.Equal(t, len(funders), withdrawal.FunderCount)
	assert.Equal(t, owner, withdrawal.Owner)

	assert.True(t, f.service.Balance().IsZero())
	assert.True(t, startBalance.Equal(f.book.BalanceOf(owner)))

	_, err = f.service.GetFunder(0)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
	for _, funder := range funders {
		assert.True(t, f.service.GetAddressToAmountFunded(funder).IsZero())
	}

	state, err := f.store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.Funders)
	assert.True(t, state.Balance.IsZero())

	withdrawals, err := f.store.ListWithdrawals(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, withdrawals, 1)
	assertInvariant(t, f.service)
}

func TestWithdraw_TransferFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	guard, _ := access.NewGuard(owner)
	store := memory.NewLedgerStore()
	bank := new(MockSettlement)
	bank.On("Transfer", mock.Anything, owner, mock.Anything).Return(errors.New("recipient rejected"))

	service, err := NewFundMeService(ctx, store, &fixedPriceConverter{price: ethPrice}, guard, bank, zerolog.Nop())
	require.NoError(t, err)
	_, err = service.Fund(ctx, alice, oneEther)
	require.NoError(t, err)
	_, err = service.Fund(ctx, bob, oneEther)
	require.NoError(t, err)

	_, err = service.Withdraw(ctx, owner)

	assert.ErrorIs(t, err, domain.ErrTransferFailed)
	assert.True(t, oneEther.Mul(decimal.NewFromInt(2)).Equal(service.Balance()))
	assert.True(t, oneEther.Equal(service.GetAddressToAmountFunded(alice)))
	assert.True(t, oneEther.Equal(service.GetAddressToAmountFunded(bob)))
	second, err := service.GetFunder(1)
	require.NoError(t, err)
	assert.Equal(t, bob, second)

	state, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Address{alice, bob}, state.Funders)
	assertInvariant(t, service)
	bank.AssertNumberOfCalls(t, "Transfer", 1)
}

func TestWithdraw_StoreFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	guard, _ := access.NewGuard(owner)
	store := new(MockLedgerStore)
	store.On("Load", ctx).Return(&domain.LedgerState{}, nil)
	store.On("SaveContribution", ctx, mock.AnythingOfType("*domain.Contribution")).Return(nil)
	store.On("Drain", ctx, mock.AnythingOfType("*domain.Withdrawal"), mock.Anything).Return(errors.New("commit failed"))

	service, err := NewFundMeService(ctx, store, &fixedPriceConverter{price: ethPrice}, guard, settlement.NewBook(), zerolog.Nop())
	require.NoError(t, err)
	_, err = service.Fund(ctx, alice, oneEther)
	require.NoError(t, err)

	_, err = service.Withdraw(ctx, owner)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrTransferFailed)
	assert.Contains(t, err.Error(), "failed to drain ledger")
	assert.True(t, oneEther.Equal(service.Balance()))
	funder, err := service.GetFunder(0)
	require.NoError(t, err)
	assert.Equal(t, alice, funder)
}

func TestWithdraw_EmptyLedgerIsNoop(t *testing.T) {
	ctx := context.Background()
	guard, _ := access.NewGuard(owner)
	store := memory.NewLedgerStore()
	bank := new(MockSettlement)

	service, err := NewFundMeService(ctx, store, &fixedPriceConverter{price: ethPrice}, guard, bank, zerolog.Nop())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		withdrawal, err := service.Withdraw(ctx, owner)
		require.NoError(t, err)
		assert.True(t, withdrawal.Amount.IsZero())
		assert.True(t, service.Balance().IsZero())
	}

	bank.AssertNotCalled(t, "Transfer")
	withdrawals, err := store.ListWithdrawals(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, withdrawals)
}

func TestWithdraw_EmptyLedgerStillRequiresOwner(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Withdraw(context.Background(), bob)

	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

// The end-to-end scenario: threshold $50, 1 ether is worth more than that.
func TestFundAndWithdraw_Scenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.service.Fund(ctx, alice, oneEther)
	require.NoError(t, err)

	_, err = f.service.Fund(ctx, alice, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInsufficientContribution)

	_, err = f.service.Withdraw(ctx, bob)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	assert.True(t, oneEther.Equal(f.service.Balance()))

	_, err = f.service.Withdraw(ctx, owner)
	require.NoError(t, err)
	assert.True(t, f.service.Balance().IsZero())
	assert.True(t, f.service.GetAddressToAmountFunded(alice).IsZero())
	assert.True(t, oneEther.Equal(f.book.BalanceOf(owner)))
}

func TestFund_ConcurrentCallsKeepInvariant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	callers := []domain.Address{alice, bob, owner}

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(caller domain.Address) {
			defer wg.Done()
			_, _ = f.service.Fund(ctx, caller, oneEther)
		}(callers[i%len(callers)])
	}
	wg.Wait()

	assert.True(t, oneEther.Mul(decimal.NewFromInt(30)).Equal(f.service.Balance()))
	assert.Equal(t, 30, f.service.Stats().FunderEntries)
	assertInvariant(t, f.service)
}

func TestGetters(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, owner, f.service.GetOwner())
	assert.Equal(t, feedAddr, f.service.GetPriceFeed())
}
