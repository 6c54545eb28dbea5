package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/fundme-backend/internal/domain"
)

// AggregatorService is a price feed whose answers are pushed by an operator
// It behaves like a MockV3Aggregator: each UpdateAnswer opens a new round.
type AggregatorService struct {
	FeedAddress  domain.Address
	FeedDecimals uint8
	RoundRepo    domain.PriceRoundRepository

	mu  sync.Mutex
	now func() time.Time
}

// NewAggregatorService creates a new AggregatorService instance
func NewAggregatorService(feed domain.Address, decimals uint8, roundRepo domain.PriceRoundRepository) *AggregatorService {
	return &AggregatorService{
		FeedAddress:  feed,
		FeedDecimals: decimals,
		RoundRepo:    roundRepo,
		now:          time.Now,
	}
}

// Address returns the feed reference
func (s *AggregatorService) Address() domain.Address {
	return s.FeedAddress
}

// Decimals returns the precision of the answers
func (s *AggregatorService) Decimals(ctx context.Context) (uint8, error) {
	return s.FeedDecimals, nil
}

// LatestRoundData returns the most recent round
func (s *AggregatorService) LatestRoundData(ctx context.Context) (*domain.RoundData, error) {
	return s.RoundRepo.GetLatest(ctx, s.FeedAddress)
}

// UpdateAnswer records answer as a new round
// Logic: Insert a new round with the next round ID (does NOT touch any ledger)
func (s *AggregatorService) UpdateAnswer(ctx context.Context, answer decimal.Decimal) (*domain.RoundData, error) {
	if !answer.IsPositive() {
		return nil, fmt.Errorf("%w: answer must be positive", domain.ErrInvalidAmount)
	}
	if !answer.IsInteger() {
		return nil, fmt.Errorf("%w: answer must be an integer scaled by the feed decimals", domain.ErrInvalidAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var nextID uint64 = 1
	latest, err := s.RoundRepo.GetLatest(ctx, s.FeedAddress)
	switch {
	case err == nil:
		nextID = latest.RoundID + 1
	case errors.Is(err, domain.ErrRoundNotFound):
	default:
		return nil, fmt.Errorf("failed to read latest round: %w", err)
	}

	now := s.now()
	round := &domain.RoundData{
		ID:              uuid.New(),
		FeedAddress:     s.FeedAddress,
		RoundID:         nextID,
		Answer:          answer,
		StartedAt:       now,
		UpdatedAt:       now,
		AnsweredInRound: nextID,
	}

	if err := s.RoundRepo.Add(ctx, round); err != nil {
		return nil, err
	}

	return round, nil
}
