package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/fundme-backend/internal/domain"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Load reads the funder sequence, the amounts and the balance in one transaction.
func (s *Store) Load(ctx context.Context) (*domain.LedgerState, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	state := &domain.LedgerState{
		Amounts: make(map[domain.Address]decimal.Decimal),
	}

	rows, err := tx.QueryContext(ctx, `SELECT funder FROM ledger_funders ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query funders: %w", err)
	}
	for rows.Next() {
		var funder string
		if err := rows.Scan(&funder); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan funder: %w", err)
		}
		state.Funders = append(state.Funders, domain.Address(funder))
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate funders: %w", err)
	}
	rows.Close()

	rows, err = tx.QueryContext(ctx, `SELECT funder, amount FROM ledger_amounts`)
	if err != nil {
		return nil, fmt.Errorf("query amounts: %w", err)
	}
	for rows.Next() {
		var funder, amountText string
		if err := rows.Scan(&funder, &amountText); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan amount: %w", err)
		}
		amount, err := decimal.NewFromString(amountText)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("parse amount of %s: %w", funder, err)
		}
		state.Amounts[domain.Address(funder)] = amount
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate amounts: %w", err)
	}
	rows.Close()

	if state.Balance, err = readBalance(ctx, tx); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return state, nil
}

// SaveContribution appends the funder entry and adds the amount to the funder and the balance.
func (s *Store) SaveContribution(ctx context.Context, c *domain.Contribution) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_funders (funder) VALUES (?)`,
		c.Funder.String(),
	); err != nil {
		return fmt.Errorf("append funder: %w", err)
	}

	// Amounts are stored as text, so the sums happen here rather than in SQL.
	current, err := readAmount(ctx, tx, c.Funder)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_amounts (funder, amount) VALUES (?, ?)
		ON CONFLICT (funder) DO UPDATE SET amount = excluded.amount
	`, c.Funder.String(), current.Add(c.Amount).String()); err != nil {
		return fmt.Errorf("update funder amount: %w", err)
	}

	balance, err := readBalance(ctx, tx)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE ledger_balance SET balance = ? WHERE id = 1`,
		balance.Add(c.Amount).String(),
	); err != nil {
		return fmt.Errorf("update balance: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO contributions (id, funder, amount, usd_value, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID.String(), c.Funder.String(), c.Amount.String(), c.USDValue.String(), toMillis(c.CreatedAt)); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("contribution %s already recorded: %w", c.ID, err)
		}
		return fmt.Errorf("insert contribution: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Drain resets the ledger and records w, committing only once settle succeeds.
func (s *Store) Drain(ctx context.Context, w *domain.Withdrawal, settle func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if err := w.Validate(); err != nil {
		return err
	}
	if settle == nil {
		return fmt.Errorf("settle function is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	balance, err := readBalance(ctx, tx)
	if err != nil {
		return err
	}
	if !balance.Equal(w.Amount) {
		return fmt.Errorf("%w: stored balance %s, withdrawing %s", domain.ErrLedgerCorrupted, balance, w.Amount)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE ledger_amounts SET amount = '0'
		WHERE funder IN (SELECT DISTINCT funder FROM ledger_funders)
	`); err != nil {
		return fmt.Errorf("reset amounts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_funders`); err != nil {
		return fmt.Errorf("clear funders: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE ledger_balance SET balance = '0' WHERE id = 1`); err != nil {
		return fmt.Errorf("reset balance: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO withdrawals (id, owner, amount, funder_count, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, w.ID.String(), w.Owner.String(), w.Amount.String(), w.FunderCount, toMillis(w.CreatedAt)); err != nil {
		return fmt.Errorf("insert withdrawal: %w", err)
	}

	if err := settle(ctx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListContributions retrieves a page of contributions, most recent first.
func (s *Store) ListContributions(ctx context.Context, limit, offset int) ([]*domain.Contribution, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT id, funder, amount, usd_value, created_at
		FROM contributions
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query contributions: %w", err)
	}
	defer rows.Close()

	contributions := make([]*domain.Contribution, 0)
	for rows.Next() {
		var c domain.Contribution
		var funder, amountText, usdText string
		var createdAt int64
		if err := rows.Scan(&c.ID, &funder, &amountText, &usdText, &createdAt); err != nil {
			return nil, fmt.Errorf("scan contribution: %w", err)
		}
		c.Funder = domain.Address(funder)
		c.CreatedAt = fromMillis(createdAt)
		if c.Amount, err = decimal.NewFromString(amountText); err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		if c.USDValue, err = decimal.NewFromString(usdText); err != nil {
			return nil, fmt.Errorf("parse usd value: %w", err)
		}
		contributions = append(contributions, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contributions: %w", err)
	}
	return contributions, nil
}

// ListWithdrawals retrieves a page of withdrawals, most recent first.
func (s *Store) ListWithdrawals(ctx context.Context, limit, offset int) ([]*domain.Withdrawal, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT id, owner, amount, funder_count, created_at
		FROM withdrawals
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query withdrawals: %w", err)
	}
	defer rows.Close()

	withdrawals := make([]*domain.Withdrawal, 0)
	for rows.Next() {
		var w domain.Withdrawal
		var owner, amountText string
		var createdAt int64
		if err := rows.Scan(&w.ID, &owner, &amountText, &w.FunderCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scan withdrawal: %w", err)
		}
		w.Owner = domain.Address(owner)
		w.CreatedAt = fromMillis(createdAt)
		if w.Amount, err = decimal.NewFromString(amountText); err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		withdrawals = append(withdrawals, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate withdrawals: %w", err)
	}
	return withdrawals, nil
}

func readBalance(ctx context.Context, q queryer) (decimal.Decimal, error) {
	var balanceText string
	if err := q.QueryRowContext(ctx, `SELECT balance FROM ledger_balance WHERE id = 1`).Scan(&balanceText); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("ledger balance row not found: %w", err)
		}
		return decimal.Zero, fmt.Errorf("get balance: %w", err)
	}
	balance, err := decimal.NewFromString(balanceText)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance: %w", err)
	}
	return balance, nil
}

func readAmount(ctx context.Context, q queryer, funder domain.Address) (decimal.Decimal, error) {
	var amountText string
	err := q.QueryRowContext(ctx, `SELECT amount FROM ledger_amounts WHERE funder = ?`, funder.String()).Scan(&amountText)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("get amount of %s: %w", funder, err)
	}
	amount, err := decimal.NewFromString(amountText)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount of %s: %w", funder, err)
	}
	return amount, nil
}
