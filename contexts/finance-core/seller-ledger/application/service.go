package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"bazaar/contexts/finance-core/seller-ledger/domain/entities"
	domainerrors "bazaar/contexts/finance-core/seller-ledger/domain/errors"
	"bazaar/contexts/finance-core/seller-ledger/domain/services"
	"bazaar/contexts/finance-core/seller-ledger/ports"
)

const (
	defaultFeeBps             = 1000
	defaultMinWithdrawalMinor = 500
	defaultClearanceDelay     = 72 * time.Hour
)

// Service owns the seller's money: proceeds credits, reversals, balance
// reads, and withdrawal requests.
type Service struct {
	Repo               ports.Repository
	Gateway            ports.PayoutGateway
	Clock              ports.Clock
	IDGen              ports.IDGenerator
	FeeBps             int
	MinWithdrawalMinor int64
	ClearanceDelay     time.Duration
	Logger             *slog.Logger
}

// CreditProceeds posts an order's net proceeds as a pending entry. The
// order id is the idempotency key: a repeated credit for the same order
// is a no-op.
func (s Service) CreditProceeds(ctx context.Context, orderID string, sellerID string, gross int64, currency string) error {
	logger := resolveLogger(s.Logger)
	if strings.TrimSpace(orderID) == "" || strings.TrimSpace(sellerID) == "" {
		return domainerrors.ErrEntryNotFound
	}
	if gross <= 0 {
		return domainerrors.ErrInvalidAmount
	}
	if currency == "" {
		currency = "USD"
	}

	feeBps := s.FeeBps
	if feeBps <= 0 {
		feeBps = defaultFeeBps
	}
	fee, net := services.SplitProceeds(gross, feeBps)

	entryID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	now := s.now()
	entry := entities.LedgerEntry{
		EntryID:     entryID,
		OrderID:     orderID,
		SellerID:    sellerID,
		Gross:       gross,
		Fee:         fee,
		Net:         net,
		Currency:    currency,
		Status:      entities.EntryStatusPending,
		AvailableAt: now.Add(s.clearanceDelay()),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.InsertEntry(ctx, entry); err != nil {
		if errors.Is(err, domainerrors.ErrDuplicateEntry) {
			return nil
		}
		return err
	}

	logger.Info("proceeds credited",
		"event", "ledger_credited",
		"module", "finance-core/seller-ledger",
		"layer", "application",
		"order_id", orderID,
		"seller_id", sellerID,
		"gross", gross,
		"fee", fee,
		"net", net,
	)
	return nil
}

// ReverseCredit takes an order's credit back, for refunds. An order that
// never posted a credit is a no-op; funds already withdrawn surface as
// ErrAlreadyWithdrawn with the entry flagged for manual reconciliation.
func (s Service) ReverseCredit(ctx context.Context, orderID string) error {
	logger := resolveLogger(s.Logger)

	err := s.Repo.ReverseEntry(ctx, orderID, s.now())
	if err != nil {
		if errors.Is(err, domainerrors.ErrEntryNotFound) {
			return nil
		}
		if errors.Is(err, domainerrors.ErrAlreadyWithdrawn) {
			logger.Warn("credit reversal needs reconciliation",
				"event", "ledger_reversal_flagged",
				"module", "finance-core/seller-ledger",
				"layer", "application",
				"order_id", orderID,
			)
		}
		return err
	}

	logger.Info("credit reversed",
		"event", "ledger_reversed",
		"module", "finance-core/seller-ledger",
		"layer", "application",
		"order_id", orderID,
	)
	return nil
}

func (s Service) Balance(ctx context.Context, sellerID string) (entities.BalanceSnapshot, error) {
	return s.Repo.Balance(ctx, sellerID)
}

// RequestWithdrawal reserves available funds and files a pending payout
// request. The reserve and the request row land in one store operation,
// so two racing requests can never both claim the same funds.
func (s Service) RequestWithdrawal(ctx context.Context, sellerID string, amount int64) (entities.Withdrawal, error) {
	logger := resolveLogger(s.Logger)
	if amount <= 0 {
		return entities.Withdrawal{}, domainerrors.ErrInvalidAmount
	}
	if amount < s.minWithdrawal() {
		return entities.Withdrawal{}, domainerrors.ErrBelowMinimum
	}

	capable, err := s.Gateway.AccountPayoutCapable(ctx, sellerID)
	if err != nil {
		return entities.Withdrawal{}, err
	}
	if !capable {
		return entities.Withdrawal{}, domainerrors.ErrNotPayoutCapable
	}

	withdrawalID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Withdrawal{}, err
	}
	now := s.now()
	withdrawal := entities.Withdrawal{
		WithdrawalID: withdrawalID,
		SellerID:     sellerID,
		Amount:       amount,
		Currency:     "USD",
		Status:       entities.WithdrawalStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.CreateWithdrawal(ctx, withdrawal); err != nil {
		return entities.Withdrawal{}, err
	}

	logger.Info("withdrawal requested",
		"event", "ledger_withdrawal_requested",
		"module", "finance-core/seller-ledger",
		"layer", "application",
		"withdrawal_id", withdrawal.WithdrawalID,
		"seller_id", sellerID,
		"amount", amount,
	)
	return withdrawal, nil
}

func (s Service) ListWithdrawals(ctx context.Context, sellerID string, limit int, offset int) ([]entities.Withdrawal, error) {
	return s.Repo.ListWithdrawals(ctx, sellerID, limit, offset)
}

func (s Service) minWithdrawal() int64 {
	if s.MinWithdrawalMinor <= 0 {
		return defaultMinWithdrawalMinor
	}
	return s.MinWithdrawalMinor
}

func (s Service) clearanceDelay() time.Duration {
	if s.ClearanceDelay <= 0 {
		return defaultClearanceDelay
	}
	return s.ClearanceDelay
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
