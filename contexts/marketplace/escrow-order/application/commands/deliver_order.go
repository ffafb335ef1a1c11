package commands

import (
	"context"
	"log/slog"

	application "bazaar/contexts/marketplace/escrow-order/application"
	"bazaar/contexts/marketplace/escrow-order/domain/entities"
	domainerrors "bazaar/contexts/marketplace/escrow-order/domain/errors"
	"bazaar/contexts/marketplace/escrow-order/ports"
)

type DeliverOrderCommand struct {
	OrderID     string
	Actor       ports.Actor
	Message     string
	Attachments []string
}

// DeliverOrderUseCase submits work for the order. The delivery payload
// and the transition to delivered land in the same store operation, so
// there is never a delivered order without its delivery on record.
type DeliverOrderUseCase struct {
	Orders      ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u DeliverOrderUseCase) Execute(ctx context.Context, cmd DeliverOrderCommand) (entities.Order, error) {
	logger := application.ResolveLogger(u.Logger)

	order, err := u.Orders.GetOrder(ctx, cmd.OrderID)
	if err != nil {
		return entities.Order{}, err
	}
	if !cmd.Actor.Admin && cmd.Actor.UserID != order.SellerID {
		return entities.Order{}, domainerrors.ErrNotOrderSeller
	}

	now := clockNow(u.Clock)
	deliveryID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Order{}, err
	}
	delivery, err := entities.NewDelivery(deliveryID, order.OrderID, cmd.Message, cmd.Attachments, now)
	if err != nil {
		return entities.Order{}, err
	}

	deliveredAt := now
	updated, err := applyTransition(ctx, u.Orders, u.IDGenerator, transitionSpec{
		order:          order,
		from:           []entities.OrderStatus{entities.OrderStatusInProgress, entities.OrderStatusInRevision},
		to:             entities.OrderStatusDelivered,
		actorID:        cmd.Actor.UserID,
		note:           "work delivered",
		at:             now,
		eventType:      "order.delivered",
		setDeliveredAt: &deliveredAt,
		delivery:       &delivery,
	})
	if err != nil {
		return entities.Order{}, err
	}

	logger.Info("work delivered",
		"event", "order_delivered",
		"module", "marketplace/escrow-order",
		"layer", "application",
		"order_id", updated.OrderID,
		"attachment_count", len(delivery.Attachments),
	)
	return updated, nil
}
