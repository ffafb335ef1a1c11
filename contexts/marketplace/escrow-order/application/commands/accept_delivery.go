package commands

import (
	"context"
	"errors"
	"log/slog"

	application "bazaar/contexts/marketplace/escrow-order/application"
	"bazaar/contexts/marketplace/escrow-order/domain/entities"
	domainerrors "bazaar/contexts/marketplace/escrow-order/domain/errors"
	"bazaar/contexts/marketplace/escrow-order/ports"
)

type AcceptDeliveryCommand struct {
	OrderID string
	Actor   ports.Actor
	// Auto marks the acceptance as made by the auto-accept sweep rather
	// than the buyer; the actor check is skipped.
	Auto bool
}

// AcceptDeliveryUseCase settles the order. The ledger credit goes first
// and is idempotent per order, then the status flips delivered to
// completed. If the flip loses a race the credit is either already owned
// by the winner's completion or gets reversed by the dispute path, so
// funds never double-post and never vanish.
type AcceptDeliveryUseCase struct {
	Orders      ports.Repository
	Ledger      ports.LedgerPoster
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u AcceptDeliveryUseCase) Execute(ctx context.Context, cmd AcceptDeliveryCommand) (entities.Order, error) {
	logger := application.ResolveLogger(u.Logger)

	order, err := u.Orders.GetOrder(ctx, cmd.OrderID)
	if err != nil {
		return entities.Order{}, err
	}
	if !cmd.Auto && !cmd.Actor.Admin && cmd.Actor.UserID != order.BuyerID {
		return entities.Order{}, domainerrors.ErrNotOrderBuyer
	}
	if order.Status == entities.OrderStatusCompleted {
		return order, nil
	}
	if order.Status != entities.OrderStatusDelivered {
		return entities.Order{}, domainerrors.ErrStatusConflict
	}

	if err := u.Ledger.CreditProceeds(ctx, order.OrderID, order.SellerID, order.Amount, order.Currency); err != nil {
		return entities.Order{}, err
	}

	actorID := cmd.Actor.UserID
	note := "delivery accepted"
	if cmd.Auto {
		actorID = "system"
		note = "delivery auto-accepted"
	}
	updated, err := applyTransition(ctx, u.Orders, u.IDGenerator, transitionSpec{
		order:     order,
		from:      []entities.OrderStatus{entities.OrderStatusDelivered},
		to:        entities.OrderStatusCompleted,
		actorID:   actorID,
		note:      note,
		at:        clockNow(u.Clock),
		eventType: "order.completed",
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrStatusConflict) {
			current, getErr := u.Orders.GetOrder(ctx, order.OrderID)
			if getErr == nil && current.Status == entities.OrderStatusCompleted {
				// The race partner completed it; our credit was their
				// no-op replay.
				return current, nil
			}
			// The order moved somewhere other than completed, most
			// likely a dispute. Take the credit back.
			if revErr := u.Ledger.ReverseCredit(ctx, order.OrderID); revErr != nil {
				logger.Error("credit reversal after lost completion failed",
					"event", "order_credit_reversal_failed",
					"module", "marketplace/escrow-order",
					"layer", "application",
					"order_id", order.OrderID,
					"error", revErr.Error(),
				)
			}
		}
		return entities.Order{}, err
	}

	logger.Info("delivery accepted",
		"event", "order_completed",
		"module", "marketplace/escrow-order",
		"layer", "application",
		"order_id", updated.OrderID,
		"amount", updated.Amount,
		"auto", cmd.Auto,
	)
	return updated, nil
}
