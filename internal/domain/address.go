package domain

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the size of an account address in bytes
const AddressLength = 20

// Address identifies an account (funder, owner or price feed)
// Stored in canonical form: "0x" followed by 40 lower-case hex characters
type Address string

// ZeroAddress is the all-zero address
const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

// ParseAddress validates and normalizes a hex address
func ParseAddress(s string) (Address, error) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "0x") && !strings.HasPrefix(trimmed, "0X") {
		return "", fmt.Errorf("%w: %q must start with 0x", ErrInvalidAddress, s)
	}

	raw, err := hex.DecodeString(trimmed[2:])
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	if len(raw) != AddressLength {
		return "", fmt.Errorf("%w: %q must be %d bytes, got %d", ErrInvalidAddress, s, AddressLength, len(raw))
	}

	return Address("0x" + hex.EncodeToString(raw)), nil
}

// MustParseAddress is like ParseAddress but panics on invalid input
// Intended for constants and tests
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// String returns the canonical hex form
func (a Address) String() string {
	return string(a)
}

// IsZero reports whether the address is empty or the zero address
func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}
