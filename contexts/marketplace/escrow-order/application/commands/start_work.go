package commands

import (
	"context"
	"log/slog"

	application "bazaar/contexts/marketplace/escrow-order/application"
	"bazaar/contexts/marketplace/escrow-order/domain/entities"
	domainerrors "bazaar/contexts/marketplace/escrow-order/domain/errors"
	"bazaar/contexts/marketplace/escrow-order/ports"
)

type StartWorkCommand struct {
	OrderID string
	Actor   ports.Actor
}

type StartWorkUseCase struct {
	Orders      ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u StartWorkUseCase) Execute(ctx context.Context, cmd StartWorkCommand) (entities.Order, error) {
	logger := application.ResolveLogger(u.Logger)

	order, err := u.Orders.GetOrder(ctx, cmd.OrderID)
	if err != nil {
		return entities.Order{}, err
	}
	if !cmd.Actor.Admin && cmd.Actor.UserID != order.SellerID {
		return entities.Order{}, domainerrors.ErrNotOrderSeller
	}

	updated, err := applyTransition(ctx, u.Orders, u.IDGenerator, transitionSpec{
		order:     order,
		from:      []entities.OrderStatus{entities.OrderStatusPaid},
		to:        entities.OrderStatusInProgress,
		actorID:   cmd.Actor.UserID,
		note:      "work started",
		at:        clockNow(u.Clock),
		eventType: "order.started",
	})
	if err != nil {
		return entities.Order{}, err
	}

	logger.Info("work started",
		"event", "order_started",
		"module", "marketplace/escrow-order",
		"layer", "application",
		"order_id", updated.OrderID,
	)
	return updated, nil
}
