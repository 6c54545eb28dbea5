package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RoundData is a single price report of an aggregator feed
// Answer is an integer scaled by the feed's declared Decimals
type RoundData struct {
	ID              uuid.UUID
	FeedAddress     Address
	RoundID         uint64
	Answer          decimal.Decimal
	StartedAt       time.Time
	UpdatedAt       time.Time
	AnsweredInRound uint64
}

// PriceFeed is the read interface of an external price oracle
// The ledger only consumes it, it never drives it
type PriceFeed interface {
	// Address returns the reference of the feed
	Address() Address

	// Decimals returns the declared precision of Answer
	Decimals(ctx context.Context) (uint8, error)

	// LatestRoundData returns the most recent report
	LatestRoundData(ctx context.Context) (*RoundData, error)
}
