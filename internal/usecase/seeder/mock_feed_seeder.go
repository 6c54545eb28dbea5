package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/fundme-backend/internal/domain"
)

// Defaults of the mock price feed deployed on development networks
const (
	MockDecimals      uint8 = 8
	MockInitialAnswer int64 = 200000000000 // $2000 with 8 decimals
)

// DevelopmentNetworks lists the networks that run against a mock price feed
var DevelopmentNetworks = []string{"hardhat", "localhost"}

// IsDevelopmentNetwork reports whether network uses the mock price feed
func IsDevelopmentNetwork(network string) bool {
	for _, n := range DevelopmentNetworks {
		if n == network {
			return true
		}
	}
	return false
}

// FeedOperator is the operator side of a pushed price feed
type FeedOperator interface {
	LatestRoundData(ctx context.Context) (*domain.RoundData, error)
	UpdateAnswer(ctx context.Context, answer decimal.Decimal) (*domain.RoundData, error)
}

// MockFeedSeeder makes sure a mock price feed has an initial answer
type MockFeedSeeder struct {
	feed FeedOperator
}

// NewMockFeedSeeder creates a new MockFeedSeeder instance
func NewMockFeedSeeder(feed FeedOperator) *MockFeedSeeder {
	return &MockFeedSeeder{
		feed: feed,
	}
}

// Seed publishes initialAnswer when the feed has no round yet
// An existing round is left untouched.
func (s *MockFeedSeeder) Seed(ctx context.Context, initialAnswer decimal.Decimal) (bool, error) {
	_, err := s.feed.LatestRoundData(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrRoundNotFound) {
		return false, fmt.Errorf("failed to read mock feed: %w", err)
	}

	if _, err := s.feed.UpdateAnswer(ctx, initialAnswer); err != nil {
		return false, fmt.Errorf("failed to seed mock feed: %w", err)
	}

	return true, nil
}
