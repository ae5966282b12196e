package entities

import "errors"

// Validation failures surfaced directly to the caller. These never leave the
// store in a partially-debited state: the validation and the debit are one
// atomic operation in the repository layer.
var (
	ErrNotFound           = errors.New("not found")
	ErrInsufficientFunds  = errors.New("insufficient chip balance")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrRoundNotActive     = errors.New("round is not active")
	ErrStockNotActive     = errors.New("stock is not active")
	ErrInsufficientShares = errors.New("not enough shares owned")
	ErrWelfareNotEligible = errors.New("not eligible for a welfare claim")
	ErrAlreadyBet         = errors.New("player already bet on this round")
	ErrRoundPoolFull      = errors.New("active round pool is at its ceiling")
)
