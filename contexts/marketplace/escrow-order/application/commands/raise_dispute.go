package commands

import (
	"context"
	"log/slog"

	application "bazaar/contexts/marketplace/escrow-order/application"
	"bazaar/contexts/marketplace/escrow-order/domain/entities"
	domainerrors "bazaar/contexts/marketplace/escrow-order/domain/errors"
	"bazaar/contexts/marketplace/escrow-order/ports"
)

type RaiseDisputeCommand struct {
	OrderID string
	Actor   ports.Actor
	Reason  string
}

// RaiseDisputeUseCase freezes an order. Either party may raise it from
// any state between pending_payment and delivered; admins can as well,
// which is also how a gateway payment reversal enters.
type RaiseDisputeUseCase struct {
	Orders      ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u RaiseDisputeUseCase) Execute(ctx context.Context, cmd RaiseDisputeCommand) (entities.Order, error) {
	logger := application.ResolveLogger(u.Logger)

	order, err := u.Orders.GetOrder(ctx, cmd.OrderID)
	if err != nil {
		return entities.Order{}, err
	}
	party := cmd.Actor.UserID == order.BuyerID || cmd.Actor.UserID == order.SellerID
	if !cmd.Actor.Admin && !party {
		return entities.Order{}, domainerrors.ErrNotOrderBuyer
	}
	if !order.Disputable() {
		return entities.Order{}, domainerrors.ErrStatusConflict
	}

	note := cmd.Reason
	if note == "" {
		note = "dispute raised"
	}
	updated, err := applyTransition(ctx, u.Orders, u.IDGenerator, transitionSpec{
		order: order,
		from: []entities.OrderStatus{
			entities.OrderStatusPendingPayment,
			entities.OrderStatusPaid,
			entities.OrderStatusInProgress,
			entities.OrderStatusInRevision,
			entities.OrderStatusDelivered,
		},
		to:        entities.OrderStatusDisputed,
		actorID:   cmd.Actor.UserID,
		note:      note,
		at:        clockNow(u.Clock),
		eventType: "order.disputed",
	})
	if err != nil {
		return entities.Order{}, err
	}

	logger.Info("dispute raised",
		"event", "order_disputed",
		"module", "marketplace/escrow-order",
		"layer", "application",
		"order_id", updated.OrderID,
		"raised_by", cmd.Actor.UserID,
	)
	return updated, nil
}
