package workers

import (
	"context"
	"log/slog"
	"time"

	"bazaar/contexts/finance-core/seller-ledger/ports"
)

// ClearanceMaturator moves pending ledger entries past their clearance
// time into the available balance.
type ClearanceMaturator struct {
	Ledger ports.Repository
	Clock  ports.Clock
	Logger *slog.Logger
}

func (m ClearanceMaturator) RunOnce(ctx context.Context) error {
	logger := resolveLogger(m.Logger)
	now := time.Now().UTC()
	if m.Clock != nil {
		now = m.Clock.Now().UTC()
	}

	matured, err := m.Ledger.MatureEntries(ctx, now)
	if err != nil {
		logger.Error("clearance sweep failed",
			"event", "ledger_clearance_failed",
			"module", "finance-core/seller-ledger",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if matured > 0 {
		logger.Info("clearance sweep completed",
			"event", "ledger_clearance_completed",
			"module", "finance-core/seller-ledger",
			"layer", "worker",
			"matured_count", matured,
		)
	}
	return nil
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
