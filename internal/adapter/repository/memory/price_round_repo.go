package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/simaogato/fundme-backend/internal/domain"
)

// PriceRoundRepository implements domain.PriceRoundRepository in memory
type PriceRoundRepository struct {
	mu     sync.Mutex
	latest map[domain.Address]domain.RoundData
}

// NewPriceRoundRepository creates an empty in-memory round repository
func NewPriceRoundRepository() *PriceRoundRepository {
	return &PriceRoundRepository{
		latest: make(map[domain.Address]domain.RoundData),
	}
}

// Add stores round; only the highest round ID per feed is kept
func (r *PriceRoundRepository) Add(ctx context.Context, round *domain.RoundData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.latest[round.FeedAddress]; ok && current.RoundID >= round.RoundID {
		return fmt.Errorf("round %d is not newer than %d", round.RoundID, current.RoundID)
	}
	r.latest[round.FeedAddress] = *round
	return nil
}

// GetLatest retrieves the most recent round of feed
func (r *PriceRoundRepository) GetLatest(ctx context.Context, feed domain.Address) (*domain.RoundData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	round, ok := r.latest[feed]
	if !ok {
		return nil, fmt.Errorf("no rounds for feed %s: %w", feed, domain.ErrRoundNotFound)
	}
	return &round, nil
}
