package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "bazaar/contexts/marketplace/escrow-order/application"
	"bazaar/contexts/marketplace/escrow-order/domain/entities"
	domainerrors "bazaar/contexts/marketplace/escrow-order/domain/errors"
	"bazaar/contexts/marketplace/escrow-order/ports"
)

type ConfirmPaymentCommand struct {
	PaymentRef string
}

// ConfirmPaymentUseCase applies the gateway's payment callback. The
// payment reference is the idempotency key: a duplicate confirmation
// finds the order already past pending_payment and replays the original
// result without touching anything.
type ConfirmPaymentUseCase struct {
	Orders      ports.Repository
	Listings    ports.ListingSource
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u ConfirmPaymentUseCase) Execute(ctx context.Context, cmd ConfirmPaymentCommand) (entities.Order, error) {
	logger := application.ResolveLogger(u.Logger)
	if strings.TrimSpace(cmd.PaymentRef) == "" {
		return entities.Order{}, domainerrors.ErrPaymentUnknown
	}

	order, err := u.Orders.GetOrderByPaymentRef(ctx, cmd.PaymentRef)
	if err != nil {
		if errors.Is(err, domainerrors.ErrOrderNotFound) {
			return entities.Order{}, domainerrors.ErrPaymentUnknown
		}
		return entities.Order{}, err
	}

	if order.Status != entities.OrderStatusPendingPayment {
		if order.Status == entities.OrderStatusCancelled || order.Status == entities.OrderStatusRefunded {
			return entities.Order{}, domainerrors.ErrStatusConflict
		}
		// Already confirmed; replay.
		return order, nil
	}

	now := clockNow(u.Clock)
	updated, err := applyTransition(ctx, u.Orders, u.IDGenerator, transitionSpec{
		order:     order,
		from:      []entities.OrderStatus{entities.OrderStatusPendingPayment},
		to:        entities.OrderStatusPaid,
		actorID:   order.BuyerID,
		note:      "payment confirmed",
		at:        now,
		eventType: "order.paid",
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrStatusConflict) {
			// A concurrent confirmation won; replay its outcome.
			return u.Orders.GetOrder(ctx, order.OrderID)
		}
		return entities.Order{}, err
	}

	// The listing leaves the market once funds are in. A conflict here
	// means it was already sold, which the replay path tolerates.
	if err := u.Listings.MarkSold(ctx, order.ListingID); err != nil {
		logger.Warn("listing sold flip failed",
			"event", "order_listing_sold_failed",
			"module", "marketplace/escrow-order",
			"layer", "application",
			"order_id", order.OrderID,
			"listing_id", order.ListingID,
			"error", err.Error(),
		)
	}

	logger.Info("payment confirmed",
		"event", "order_paid",
		"module", "marketplace/escrow-order",
		"layer", "application",
		"order_id", updated.OrderID,
		"payment_ref", cmd.PaymentRef,
		"amount", updated.Amount,
	)
	return updated, nil
}
