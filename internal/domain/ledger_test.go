package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = MustParseAddress("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	bob   = MustParseAddress("0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc")
)

func TestContributionLedger_RecordContribution(t *testing.T) {
	ledger := NewContributionLedger()

	ledger.RecordContribution(alice, decimal.NewFromInt(10))
	ledger.RecordContribution(bob, decimal.NewFromInt(5))
	ledger.RecordContribution(alice, decimal.NewFromInt(7))

	assert.True(t, decimal.NewFromInt(17).Equal(ledger.AmountFunded(alice)))
	assert.True(t, decimal.NewFromInt(5).Equal(ledger.AmountFunded(bob)))
	assert.True(t, decimal.NewFromInt(22).Equal(ledger.Total()))

	// Duplicates are retained in contribution order
	assert.Equal(t, []Address{alice, bob, alice}, ledger.Funders())
	assert.Equal(t, []Address{alice, bob}, ledger.DistinctFunders())
	assert.Equal(t, 3, ledger.Len())

	last, err := ledger.FunderAt(2)
	require.NoError(t, err)
	assert.Equal(t, alice, last)
}

func TestContributionLedger_AmountFundedUnknown(t *testing.T) {
	ledger := NewContributionLedger()
	assert.True(t, ledger.AmountFunded(alice).IsZero())
}

func TestContributionLedger_FunderAt(t *testing.T) {
	ledger := NewContributionLedger()
	ledger.RecordContribution(alice, decimal.NewFromInt(1))

	tests := []struct {
		name    string
		index   uint64
		want    Address
		wantErr bool
	}{
		{name: "first entry", index: 0, want: alice},
		{name: "index equal to length", index: 1, wantErr: true},
		{name: "far out of range", index: 1 << 40, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ledger.FunderAt(tt.index)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrIndexOutOfRange)
				assert.Equal(t, Address(""), got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContributionLedger_ResetAll(t *testing.T) {
	ledger := NewContributionLedger()
	ledger.RecordContribution(alice, decimal.NewFromInt(10))
	ledger.RecordContribution(alice, decimal.NewFromInt(10))
	ledger.RecordContribution(bob, decimal.NewFromInt(3))

	ledger.ResetAll()

	assert.Equal(t, 0, ledger.Len())
	assert.True(t, ledger.AmountFunded(alice).IsZero())
	assert.True(t, ledger.AmountFunded(bob).IsZero())
	assert.True(t, ledger.Total().IsZero())

	_, err := ledger.FunderAt(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	// Resetting an empty ledger is a no-op
	ledger.ResetAll()
	assert.Equal(t, 0, ledger.Len())
}

func TestContributionLedger_SnapshotRestore(t *testing.T) {
	ledger := NewContributionLedger()
	ledger.RecordContribution(alice, decimal.NewFromInt(10))
	ledger.RecordContribution(bob, decimal.NewFromInt(4))

	snap := ledger.Snapshot()

	ledger.ResetAll()
	ledger.RecordContribution(bob, decimal.NewFromInt(99))

	ledger.Restore(snap)

	assert.Equal(t, []Address{alice, bob}, ledger.Funders())
	assert.True(t, decimal.NewFromInt(10).Equal(ledger.AmountFunded(alice)))
	assert.True(t, decimal.NewFromInt(4).Equal(ledger.AmountFunded(bob)))

	// Mutating after a restore must not leak into the snapshot
	ledger.RecordContribution(alice, decimal.NewFromInt(1))
	ledger.Restore(snap)
	assert.True(t, decimal.NewFromInt(10).Equal(ledger.AmountFunded(alice)))
	assert.Equal(t, 2, ledger.Len())
}

func TestLedgerState_Ledger(t *testing.T) {
	t.Run("consistent state", func(t *testing.T) {
		state := &LedgerState{
			Funders: []Address{alice, bob, alice},
			Amounts: map[Address]decimal.Decimal{
				alice: decimal.NewFromInt(8),
				bob:   decimal.NewFromInt(2),
			},
			Balance: decimal.NewFromInt(10),
		}

		ledger, err := state.Ledger()
		require.NoError(t, err)
		assert.Equal(t, []Address{alice, bob, alice}, ledger.Funders())
		assert.True(t, decimal.NewFromInt(10).Equal(ledger.Total()))
	})

	t.Run("balance mismatch", func(t *testing.T) {
		state := &LedgerState{
			Funders: []Address{alice},
			Amounts: map[Address]decimal.Decimal{alice: decimal.NewFromInt(8)},
			Balance: decimal.NewFromInt(9),
		}

		_, err := state.Ledger()
		assert.ErrorIs(t, err, ErrLedgerCorrupted)
	})

	t.Run("empty state", func(t *testing.T) {
		ledger, err := (&LedgerState{}).Ledger()
		require.NoError(t, err)
		assert.Equal(t, 0, ledger.Len())
	})
}
