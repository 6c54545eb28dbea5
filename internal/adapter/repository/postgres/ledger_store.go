package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/fundme-backend/internal/domain"
)

// ledgerStore implements domain.LedgerStore
type ledgerStore struct {
	db *DB
}

// NewLedgerStore creates a new ledger store
func NewLedgerStore(db *DB) domain.LedgerStore {
	return &ledgerStore{db: db}
}

// Load reads the funder sequence, the amounts and the balance in one snapshot
func (r *ledgerStore) Load(ctx context.Context) (*domain.LedgerState, error) {
	dbTx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	state := &domain.LedgerState{
		Amounts: make(map[domain.Address]decimal.Decimal),
	}

	// Funder sequence, in insertion order
	rows, err := dbTx.QueryContext(ctx, `SELECT funder FROM ledger_funders ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query funders: %w", err)
	}
	for rows.Next() {
		var funder string
		if err := rows.Scan(&funder); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan funder: %w", err)
		}
		state.Funders = append(state.Funders, domain.Address(funder))
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating funders: %w", err)
	}
	rows.Close()

	// Amounts per funder
	rows, err = dbTx.QueryContext(ctx, `SELECT funder, amount FROM ledger_amounts`)
	if err != nil {
		return nil, fmt.Errorf("failed to query amounts: %w", err)
	}
	for rows.Next() {
		var funder, amountStr string
		if err := rows.Scan(&funder, &amountStr); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan amount: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to parse amount: %w", err)
		}
		state.Amounts[domain.Address(funder)] = amount
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating amounts: %w", err)
	}
	rows.Close()

	// Custodied balance
	balance, err := scanBalance(ctx, dbTx, `SELECT balance FROM ledger_balance WHERE id = 1`)
	if err != nil {
		return nil, err
	}
	state.Balance = balance

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return state, nil
}

// SaveContribution records a contribution in a database transaction
func (r *ledgerStore) SaveContribution(ctx context.Context, c *domain.Contribution) error {
	if err := c.Validate(); err != nil {
		return err
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx,
		`INSERT INTO ledger_funders (funder) VALUES ($1)`,
		c.Funder.String(),
	); err != nil {
		return fmt.Errorf("failed to append funder: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, `
		INSERT INTO ledger_amounts (funder, amount)
		VALUES ($1, $2)
		ON CONFLICT (funder) DO UPDATE SET amount = ledger_amounts.amount + EXCLUDED.amount
	`, c.Funder.String(), c.Amount.String()); err != nil {
		return fmt.Errorf("failed to update funder amount: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx,
		`UPDATE ledger_balance SET balance = balance + $1 WHERE id = 1`,
		c.Amount.String(),
	); err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, `
		INSERT INTO contributions (id, funder, amount, usd_value, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.Funder.String(), c.Amount.String(), c.USDValue.String(), c.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert contribution: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Drain resets the ledger, records the withdrawal and settles it in one database transaction
// The transaction is only committed once settle succeeds.
func (r *ledgerStore) Drain(ctx context.Context, w *domain.Withdrawal, settle func(ctx context.Context) error) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if settle == nil {
		return errors.New("settle function is required")
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	// Lock the balance row so no contribution lands mid-drain
	balance, err := scanBalance(ctx, dbTx, `SELECT balance FROM ledger_balance WHERE id = 1 FOR UPDATE`)
	if err != nil {
		return err
	}
	if !balance.Equal(w.Amount) {
		return fmt.Errorf("%w: stored balance %s, withdrawing %s", domain.ErrLedgerCorrupted, balance, w.Amount)
	}

	if _, err := dbTx.ExecContext(ctx, `
		UPDATE ledger_amounts SET amount = 0
		WHERE funder IN (SELECT DISTINCT funder FROM ledger_funders)
	`); err != nil {
		return fmt.Errorf("failed to reset amounts: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM ledger_funders`); err != nil {
		return fmt.Errorf("failed to clear funders: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, `UPDATE ledger_balance SET balance = 0 WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to reset balance: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, `
		INSERT INTO withdrawals (id, owner, amount, funder_count, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, w.ID, w.Owner.String(), w.Amount.String(), w.FunderCount, w.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert withdrawal: %w", err)
	}

	if err := settle(ctx); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListContributions retrieves a page of contributions, most recent first
func (r *ledgerStore) ListContributions(ctx context.Context, limit, offset int) ([]*domain.Contribution, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, funder, amount, usd_value, created_at
		FROM contributions
		ORDER BY created_at DESC, seq DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributions: %w", err)
	}
	defer rows.Close()

	contributions := make([]*domain.Contribution, 0)
	for rows.Next() {
		var c domain.Contribution
		var funder, amountStr, usdStr string
		if err := rows.Scan(&c.ID, &funder, &amountStr, &usdStr, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		c.Funder = domain.Address(funder)

		if c.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("failed to parse amount: %w", err)
		}
		if c.USDValue, err = decimal.NewFromString(usdStr); err != nil {
			return nil, fmt.Errorf("failed to parse usd_value: %w", err)
		}
		contributions = append(contributions, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contributions: %w", err)
	}

	return contributions, nil
}

// ListWithdrawals retrieves a page of withdrawals, most recent first
func (r *ledgerStore) ListWithdrawals(ctx context.Context, limit, offset int) ([]*domain.Withdrawal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner, amount, funder_count, created_at
		FROM withdrawals
		ORDER BY created_at DESC, seq DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query withdrawals: %w", err)
	}
	defer rows.Close()

	withdrawals := make([]*domain.Withdrawal, 0)
	for rows.Next() {
		var w domain.Withdrawal
		var owner, amountStr string
		if err := rows.Scan(&w.ID, &owner, &amountStr, &w.FunderCount, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal: %w", err)
		}
		w.Owner = domain.Address(owner)

		if w.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("failed to parse amount: %w", err)
		}
		withdrawals = append(withdrawals, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating withdrawals: %w", err)
	}

	return withdrawals, nil
}

// scanBalance reads the single balance row
func scanBalance(ctx context.Context, dbTx *sql.Tx, query string) (decimal.Decimal, error) {
	var balanceStr string
	if err := dbTx.QueryRowContext(ctx, query).Scan(&balanceStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("ledger balance row not found: %w", err)
		}
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse balance: %w", err)
	}
	return balance, nil
}
