package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/fundme-backend/internal/domain"
)

// Add stores a new price round.
func (s *Store) Add(ctx context.Context, round *domain.RoundData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if round == nil {
		return fmt.Errorf("round is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO price_rounds (id, feed_address, round_id, answer, started_at, updated_at, answered_in_round)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		round.ID.String(),
		round.FeedAddress.String(),
		int64(round.RoundID),
		round.Answer.String(),
		toMillis(round.StartedAt),
		toMillis(round.UpdatedAt),
		int64(round.AnsweredInRound),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("round %d of feed %s already exists: %w", round.RoundID, round.FeedAddress, err)
		}
		return fmt.Errorf("insert price round: %w", err)
	}
	return nil
}

// GetLatest retrieves the round with the highest round ID of a feed.
func (s *Store) GetLatest(ctx context.Context, feed domain.Address) (*domain.RoundData, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var (
		round                    domain.RoundData
		feedAddress, answerText  string
		roundID, answeredInRound int64
		startedAt, updatedAt     int64
	)
	err := s.sqlDB.QueryRowContext(ctx, `
		SELECT id, feed_address, round_id, answer, started_at, updated_at, answered_in_round
		FROM price_rounds
		WHERE feed_address = ?
		ORDER BY round_id DESC
		LIMIT 1
	`, feed.String()).Scan(
		&round.ID,
		&feedAddress,
		&roundID,
		&answerText,
		&startedAt,
		&updatedAt,
		&answeredInRound,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no rounds for feed %s: %w", feed, domain.ErrRoundNotFound)
		}
		return nil, fmt.Errorf("get latest price round: %w", err)
	}

	answer, err := decimal.NewFromString(answerText)
	if err != nil {
		return nil, fmt.Errorf("parse answer: %w", err)
	}

	round.FeedAddress = domain.Address(feedAddress)
	round.RoundID = uint64(roundID)
	round.AnsweredInRound = uint64(answeredInRound)
	round.Answer = answer
	round.StartedAt = fromMillis(startedAt)
	round.UpdatedAt = fromMillis(updatedAt)
	return &round, nil
}
