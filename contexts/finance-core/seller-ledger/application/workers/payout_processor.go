package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"bazaar/contexts/finance-core/seller-ledger/domain/entities"
	domainerrors "bazaar/contexts/finance-core/seller-ledger/domain/errors"
	"bazaar/contexts/finance-core/seller-ledger/ports"
)

// PayoutProcessor drains pending withdrawals through the gateway. Each
// withdrawal is claimed with a conditional move to processing before the
// transfer, so two processors never pay the same request; the gateway
// call happens outside any store lock, and its outcome lands as
// completed or failed. A failed withdrawal stops reserving funds, which
// restores the available balance.
type PayoutProcessor struct {
	Ledger    ports.Repository
	Gateway   ports.PayoutGateway
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (p PayoutProcessor) RunOnce(ctx context.Context) error {
	logger := resolveLogger(p.Logger)
	limit := p.BatchSize
	if limit <= 0 {
		limit = 50
	}
	now := time.Now().UTC()
	if p.Clock != nil {
		now = p.Clock.Now().UTC()
	}

	pending, err := p.Ledger.FindPendingWithdrawals(ctx, limit)
	if err != nil {
		logger.Error("payout scan failed",
			"event", "ledger_payout_scan_failed",
			"module", "finance-core/seller-ledger",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	processed := 0
	for _, withdrawal := range pending {
		err := p.Ledger.UpdateWithdrawalStatus(
			ctx,
			withdrawal.WithdrawalID,
			[]entities.WithdrawalStatus{entities.WithdrawalStatusPending},
			entities.WithdrawalStatusProcessing,
			"", "",
			now,
		)
		if err != nil {
			if errors.Is(err, domainerrors.ErrStatusConflict) {
				continue
			}
			return err
		}

		transferID, transferErr := p.Gateway.Transfer(ctx, withdrawal.SellerID, withdrawal.Amount, withdrawal.Currency)
		if transferErr != nil {
			logger.Error("payout transfer failed",
				"event", "ledger_payout_transfer_failed",
				"module", "finance-core/seller-ledger",
				"layer", "worker",
				"withdrawal_id", withdrawal.WithdrawalID,
				"seller_id", withdrawal.SellerID,
				"amount", withdrawal.Amount,
				"error", transferErr.Error(),
			)
			if err := p.Ledger.UpdateWithdrawalStatus(
				ctx,
				withdrawal.WithdrawalID,
				[]entities.WithdrawalStatus{entities.WithdrawalStatusProcessing},
				entities.WithdrawalStatusFailed,
				"", transferErr.Error(),
				now,
			); err != nil {
				return err
			}
			continue
		}

		if err := p.Ledger.UpdateWithdrawalStatus(
			ctx,
			withdrawal.WithdrawalID,
			[]entities.WithdrawalStatus{entities.WithdrawalStatusProcessing},
			entities.WithdrawalStatusCompleted,
			transferID, "",
			now,
		); err != nil {
			return err
		}
		processed++

		logger.Info("payout completed",
			"event", "ledger_payout_completed",
			"module", "finance-core/seller-ledger",
			"layer", "worker",
			"withdrawal_id", withdrawal.WithdrawalID,
			"seller_id", withdrawal.SellerID,
			"amount", withdrawal.Amount,
			"transfer_id", transferID,
		)
	}

	if processed > 0 {
		logger.Info("payout cycle completed",
			"event", "ledger_payout_cycle_completed",
			"module", "finance-core/seller-ledger",
			"layer", "worker",
			"processed_count", processed,
		)
	}
	return nil
}
