package domain

import "errors"

// Failure cases of the custody ledger. None of them carry a payload; callers
// match them with errors.Is.
var (
	ErrInsufficientContribution = errors.New("you need to spend more ETH")
	ErrNotOwner                 = errors.New("caller is not the owner")
	ErrIndexOutOfRange          = errors.New("funder index out of range")
	ErrTransferFailed           = errors.New("transfer to owner failed")
	ErrOracleUnavailable        = errors.New("price oracle unavailable")

	ErrInvalidAddress  = errors.New("invalid address")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrLedgerCorrupted = errors.New("ledger balance does not match recorded contributions")
	ErrRoundNotFound   = errors.New("price round not found")
)
