package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PriceDecimals is the number of fractional digits of every fixed-point value
// handled by the ledger (prices and USD values)
const PriceDecimals = 18

var (
	// WeiPerEther scales 1 ether to its wei representation (10^18)
	WeiPerEther = decimal.New(1, PriceDecimals)

	// MinimumUSD is the minimum USD value of a single contribution, as an
	// 18-decimal fixed-point number ($50)
	MinimumUSD = decimal.NewFromInt(50).Mul(WeiPerEther)

	// MaxAmount is the largest representable amount of wei (2^256 - 1)
	MaxAmount = decimal.RequireFromString("115792089237316195423570985008687907853269984665640564039457584007913129639935")
)

// maxAmountDigits is the number of decimal digits of MaxAmount
const maxAmountDigits = 78

// ParseAmount parses a native asset amount expressed in wei
// Amounts must be plain non-negative integers no larger than MaxAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	trimmed, err := plainNumber(s)
	if err != nil {
		return decimal.Zero, err
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// ValidateAmount checks that amount is a non-negative integer number of wei
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidAmount)
	}
	// Bound the magnitude before any comparison rescales the value
	if int64(amount.NumDigits())+int64(amount.Exponent()) > maxAmountDigits {
		return fmt.Errorf("%w: amount exceeds 2^256-1 wei", ErrInvalidAmount)
	}
	if !amount.IsInteger() {
		return fmt.Errorf("%w: amount must be a whole number of wei", ErrInvalidAmount)
	}
	if amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: amount exceeds 2^256-1 wei", ErrInvalidAmount)
	}
	return nil
}

// ParseEther converts a decimal ether string (e.g. "0.1") into wei
func ParseEther(s string) (decimal.Decimal, error) {
	trimmed, err := plainNumber(s)
	if err != nil {
		return decimal.Zero, err
	}
	ether, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return ParseAmount(ether.Mul(WeiPerEther).String())
}

// plainNumber trims s and rejects exponent notation and inputs longer than any valid amount
func plainNumber(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if strings.ContainsAny(trimmed, "eE") {
		return "", fmt.Errorf("%w: exponent notation is not accepted", ErrInvalidAmount)
	}
	// sign, digits, and room for a decimal point plus the 18 fractional digits of ether
	if len(trimmed) > maxAmountDigits+PriceDecimals+2 {
		return "", fmt.Errorf("%w: too many digits", ErrInvalidAmount)
	}
	return trimmed, nil
}
