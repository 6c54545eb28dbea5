package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/fundme-backend/internal/domain"
)

// priceRoundRepository implements domain.PriceRoundRepository
type priceRoundRepository struct {
	db *DB
}

// NewPriceRoundRepository creates a new price round repository
func NewPriceRoundRepository(db *DB) domain.PriceRoundRepository {
	return &priceRoundRepository{db: db}
}

// Add creates a new price round
func (r *priceRoundRepository) Add(ctx context.Context, round *domain.RoundData) error {
	query := `
		INSERT INTO price_rounds (id, feed_address, round_id, answer, started_at, updated_at, answered_in_round)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		round.ID,
		round.FeedAddress.String(),
		int64(round.RoundID),
		round.Answer.String(),
		round.StartedAt,
		round.UpdatedAt,
		int64(round.AnsweredInRound),
	)
	if err != nil {
		return fmt.Errorf("failed to insert price round: %w", err)
	}

	return nil
}

// GetLatest retrieves the round with the highest round ID for a given feed
func (r *priceRoundRepository) GetLatest(ctx context.Context, feed domain.Address) (*domain.RoundData, error) {
	query := `
		SELECT id, feed_address, round_id, answer, started_at, updated_at, answered_in_round
		FROM price_rounds
		WHERE feed_address = $1
		ORDER BY round_id DESC
		LIMIT 1
	`

	var round domain.RoundData
	var feedAddress, answerStr string
	var roundID, answeredInRound int64

	err := r.db.QueryRowContext(ctx, query, feed.String()).Scan(
		&round.ID,
		&feedAddress,
		&roundID,
		&answerStr,
		&round.StartedAt,
		&round.UpdatedAt,
		&answeredInRound,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no rounds for feed %s: %w", feed, domain.ErrRoundNotFound)
		}
		return nil, fmt.Errorf("failed to get latest price round: %w", err)
	}

	answer, err := decimal.NewFromString(answerStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse answer: %w", err)
	}

	round.FeedAddress = domain.Address(feedAddress)
	round.RoundID = uint64(roundID)
	round.AnsweredInRound = uint64(answeredInRound)
	round.Answer = answer

	return &round, nil
}
