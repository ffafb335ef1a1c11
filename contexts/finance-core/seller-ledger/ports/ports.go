package ports

import (
	"context"
	"time"

	"bazaar/contexts/finance-core/seller-ledger/domain/entities"
)

// Actor identifies the caller of a mutating operation.
type Actor struct {
	UserID string
	Admin  bool
}

type Repository interface {
	// InsertEntry persists a new credit; a second entry for the same
	// order fails with ErrDuplicateEntry.
	InsertEntry(ctx context.Context, entry entities.LedgerEntry) error
	GetEntryByOrder(ctx context.Context, orderID string) (entities.LedgerEntry, error)
	// ReverseEntry takes a credit back in one store operation. Pending
	// and still-covered available entries flip to reversed; an entry
	// whose net was already consumed by withdrawals is flagged
	// needs_reconciliation and fails with ErrAlreadyWithdrawn. Reversing
	// an already-reversed entry is a no-op.
	ReverseEntry(ctx context.Context, orderID string, now time.Time) error
	// MatureEntries moves pending entries past availableAt to available
	// and reports how many cleared.
	MatureEntries(ctx context.Context, now time.Time) (int, error)
	// Balance reads one seller's funds in a single consistent snapshot.
	Balance(ctx context.Context, sellerID string) (entities.BalanceSnapshot, error)
	// CreateWithdrawal reserves against the available balance and files
	// the request in the same store operation; an amount above available
	// fails with ErrInsufficientAvailable and writes nothing.
	CreateWithdrawal(ctx context.Context, withdrawal entities.Withdrawal) error
	GetWithdrawal(ctx context.Context, withdrawalID string) (entities.Withdrawal, error)
	ListWithdrawals(ctx context.Context, sellerID string, limit int, offset int) ([]entities.Withdrawal, error)
	FindPendingWithdrawals(ctx context.Context, limit int) ([]entities.Withdrawal, error)
	// UpdateWithdrawalStatus performs a conditional transition and set
	// of transfer metadata.
	UpdateWithdrawalStatus(
		ctx context.Context,
		withdrawalID string,
		from []entities.WithdrawalStatus,
		to entities.WithdrawalStatus,
		transferID string,
		failureReason string,
		updatedAt time.Time,
	) error
}

// PayoutGateway fronts the PSP's payout side.
type PayoutGateway interface {
	AccountPayoutCapable(ctx context.Context, sellerID string) (bool, error)
	Transfer(ctx context.Context, sellerID string, amount int64, currency string) (string, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
