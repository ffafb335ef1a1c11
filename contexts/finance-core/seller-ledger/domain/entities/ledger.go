package entities

import "time"

type EntryStatus string

const (
	EntryStatusPending   EntryStatus = "pending"
	EntryStatusAvailable EntryStatus = "available"
	EntryStatusReversed  EntryStatus = "reversed"
)

// LedgerEntry is one order's credited proceeds: the gross amount, the
// platform fee taken from it, and the net that clears to the seller.
type LedgerEntry struct {
	EntryID             string
	OrderID             string
	SellerID            string
	Gross               int64
	Fee                 int64
	Net                 int64
	Currency            string
	Status              EntryStatus
	NeedsReconciliation bool
	AvailableAt         time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type WithdrawalStatus string

const (
	WithdrawalStatusPending    WithdrawalStatus = "pending"
	WithdrawalStatusProcessing WithdrawalStatus = "processing"
	WithdrawalStatusCompleted  WithdrawalStatus = "completed"
	WithdrawalStatusFailed     WithdrawalStatus = "failed"
)

type Withdrawal struct {
	WithdrawalID  string
	SellerID      string
	Amount        int64
	Currency      string
	Status        WithdrawalStatus
	TransferID    string
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BalanceSnapshot is one consistent read of a seller's funds. Available
// already has open and completed withdrawals subtracted.
type BalanceSnapshot struct {
	SellerID  string
	Available int64
	Pending   int64
	Withdrawn int64
}
