package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "bazaar/contexts/marketplace/escrow-order/application"
	"bazaar/contexts/marketplace/escrow-order/application/commands"
	domainerrors "bazaar/contexts/marketplace/escrow-order/domain/errors"
	"bazaar/contexts/marketplace/escrow-order/ports"
)

// AutoAcceptor settles deliveries the buyer never responded to. Orders
// delivered for longer than Window complete through the same use case a
// buyer acceptance runs, credit included.
type AutoAcceptor struct {
	Orders    ports.Repository
	Accept    commands.AcceptDeliveryUseCase
	Clock     ports.Clock
	Window    time.Duration
	BatchSize int
	Logger    *slog.Logger
}

func (a AutoAcceptor) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(a.Logger)
	window := a.Window
	if window <= 0 {
		window = 72 * time.Hour
	}
	limit := a.BatchSize
	if limit <= 0 {
		limit = 100
	}
	now := time.Now().UTC()
	if a.Clock != nil {
		now = a.Clock.Now().UTC()
	}

	due, err := a.Orders.FindDeliveredBefore(ctx, now.Add(-window), limit)
	if err != nil {
		logger.Error("auto-accept scan failed",
			"event", "order_auto_accept_scan_failed",
			"module", "marketplace/escrow-order",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	accepted := 0
	for _, order := range due {
		_, err := a.Accept.Execute(ctx, commands.AcceptDeliveryCommand{
			OrderID: order.OrderID,
			Auto:    true,
		})
		if err != nil {
			// A buyer action racing the sweep is fine; anything else is
			// logged and the sweep moves on.
			if errors.Is(err, domainerrors.ErrStatusConflict) {
				continue
			}
			logger.Error("auto-accept failed",
				"event", "order_auto_accept_failed",
				"module", "marketplace/escrow-order",
				"layer", "worker",
				"order_id", order.OrderID,
				"error", err.Error(),
			)
			continue
		}
		accepted++
	}

	if accepted > 0 {
		logger.Info("auto-accept sweep completed",
			"event", "order_auto_accept_completed",
			"module", "marketplace/escrow-order",
			"layer", "worker",
			"accepted_count", accepted,
		)
	}
	return nil
}
