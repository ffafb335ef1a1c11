package commands

import (
	"context"
	"log/slog"

	application "bazaar/contexts/marketplace/escrow-order/application"
	"bazaar/contexts/marketplace/escrow-order/domain/entities"
	domainerrors "bazaar/contexts/marketplace/escrow-order/domain/errors"
	"bazaar/contexts/marketplace/escrow-order/ports"
)

type RequestRevisionCommand struct {
	OrderID string
	Actor   ports.Actor
	Note    string
}

// RequestRevisionUseCase sends a delivery back for more work, bounded by
// the order's revision cap. The counter increments inside the same
// conditional update as the status change, so racing requests cannot
// overshoot the cap.
type RequestRevisionUseCase struct {
	Orders      ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u RequestRevisionUseCase) Execute(ctx context.Context, cmd RequestRevisionCommand) (entities.Order, error) {
	logger := application.ResolveLogger(u.Logger)

	order, err := u.Orders.GetOrder(ctx, cmd.OrderID)
	if err != nil {
		return entities.Order{}, err
	}
	if !cmd.Actor.Admin && cmd.Actor.UserID != order.BuyerID {
		return entities.Order{}, domainerrors.ErrNotOrderBuyer
	}
	if order.Revisions >= order.MaxRevisions {
		return entities.Order{}, domainerrors.ErrRevisionCapReached
	}

	note := cmd.Note
	if note == "" {
		note = "revision requested"
	}
	updated, err := applyTransition(ctx, u.Orders, u.IDGenerator, transitionSpec{
		order:              order,
		from:               []entities.OrderStatus{entities.OrderStatusDelivered},
		to:                 entities.OrderStatusInRevision,
		actorID:            cmd.Actor.UserID,
		note:               note,
		at:                 clockNow(u.Clock),
		eventType:          "order.revision_requested",
		incrementRevisions: true,
	})
	if err != nil {
		return entities.Order{}, err
	}

	logger.Info("revision requested",
		"event", "order_revision_requested",
		"module", "marketplace/escrow-order",
		"layer", "application",
		"order_id", updated.OrderID,
		"revisions", updated.Revisions,
	)
	return updated, nil
}
