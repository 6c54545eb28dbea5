package oracle

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/fundme-backend/internal/domain"
)

// Adapter converts native asset amounts into USD using a price feed
// Prices are read fresh on every call; there is no cache.
type Adapter struct {
	Feed domain.PriceFeed
}

// NewAdapter creates a new Adapter instance
func NewAdapter(feed domain.PriceFeed) *Adapter {
	return &Adapter{Feed: feed}
}

// PriceFeed returns the reference of the underlying feed
func (a *Adapter) PriceFeed() domain.Address {
	return a.Feed.Address()
}

// LatestPrice returns the USD price of one unit of native asset as an
// 18-decimal fixed-point number
// Logic:
//  1. Read the feed's declared decimals
//  2. Read the latest round
//  3. Scale the answer from the feed's decimals to 18 decimals
func (a *Adapter) LatestPrice(ctx context.Context) (decimal.Decimal, error) {
	decimals, err := a.Feed.Decimals(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: read decimals: %v", domain.ErrOracleUnavailable, err)
	}

	round, err := a.Feed.LatestRoundData(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: read latest round: %v", domain.ErrOracleUnavailable, err)
	}

	if round.UpdatedAt.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: round %d was never updated", domain.ErrOracleUnavailable, round.RoundID)
	}
	if !round.Answer.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: non-positive answer %s", domain.ErrOracleUnavailable, round.Answer)
	}

	return Normalize(round.Answer, decimals), nil
}

// Convert returns the USD value of amount wei as an 18-decimal fixed-point number
// The product is computed exactly and truncated toward zero after scaling down.
func (a *Adapter) Convert(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	price, err := a.LatestPrice(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return ConvertAt(amount, price), nil
}

// ConvertAt applies a known 18-decimal price to amount wei
func ConvertAt(amount, price decimal.Decimal) decimal.Decimal {
	quotient, _ := amount.Mul(price).QuoRem(domain.WeiPerEther, 0)
	return quotient
}

// Normalize rescales a feed answer declared with the given decimals to 18 decimals
func Normalize(answer decimal.Decimal, decimals uint8) decimal.Decimal {
	return answer.Shift(int32(domain.PriceDecimals) - int32(decimals)).Truncate(0)
}
