package errors

import "errors"

var (
	ErrEntryNotFound         = errors.New("ledger entry not found")
	ErrDuplicateEntry        = errors.New("ledger entry already exists for this order")
	ErrWithdrawalNotFound    = errors.New("withdrawal not found")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrBelowMinimum          = errors.New("amount is below the withdrawal minimum")
	ErrInsufficientAvailable = errors.New("amount exceeds the available balance")
	ErrAlreadyWithdrawn      = errors.New("credited funds were already withdrawn")
	ErrNotPayoutCapable      = errors.New("gateway account cannot receive payouts")
	ErrStatusConflict        = errors.New("ledger state changed concurrently")
)
