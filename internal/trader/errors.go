package trader

import "errors"

var (
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrInsufficientHoldings = errors.New("not enough holdings")
	ErrInvalidAmount        = errors.New("amount and price must be positive with at most 8 decimal places")
	ErrInvalidSymbol        = errors.New("symbol is required")
	ErrUserNotFound         = errors.New("user not found")
)
