package commands

import (
	"context"
	"log/slog"

	application "bazaar/contexts/marketplace/escrow-order/application"
	"bazaar/contexts/marketplace/escrow-order/domain/entities"
	domainerrors "bazaar/contexts/marketplace/escrow-order/domain/errors"
	"bazaar/contexts/marketplace/escrow-order/ports"
)

const (
	ResolutionRefund = "refund"
	ResolutionResume = "resume"
)

type ResolveDisputeCommand struct {
	OrderID    string
	Actor      ports.Actor
	Resolution string
	Note       string
}

// ResolveDisputeUseCase closes a dispute, admin only. Refund reverses
// any ledger credit the order may have posted and refunds the payment;
// resume puts the order back into in_progress.
type ResolveDisputeUseCase struct {
	Orders      ports.Repository
	Ledger      ports.LedgerPoster
	Payments    ports.PaymentGateway
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u ResolveDisputeUseCase) Execute(ctx context.Context, cmd ResolveDisputeCommand) (entities.Order, error) {
	logger := application.ResolveLogger(u.Logger)

	if !cmd.Actor.Admin {
		return entities.Order{}, domainerrors.ErrNotAdmin
	}
	if cmd.Resolution != ResolutionRefund && cmd.Resolution != ResolutionResume {
		return entities.Order{}, domainerrors.ErrInvalidResolution
	}

	order, err := u.Orders.GetOrder(ctx, cmd.OrderID)
	if err != nil {
		return entities.Order{}, err
	}
	if order.Status != entities.OrderStatusDisputed {
		return entities.Order{}, domainerrors.ErrStatusConflict
	}

	if cmd.Resolution == ResolutionResume {
		note := cmd.Note
		if note == "" {
			note = "dispute resolved, work resumes"
		}
		updated, err := applyTransition(ctx, u.Orders, u.IDGenerator, transitionSpec{
			order:     order,
			from:      []entities.OrderStatus{entities.OrderStatusDisputed},
			to:        entities.OrderStatusInProgress,
			actorID:   cmd.Actor.UserID,
			note:      note,
			at:        clockNow(u.Clock),
			eventType: "order.resumed",
		})
		if err != nil {
			return entities.Order{}, err
		}
		logger.Info("dispute resolved with resume",
			"event", "order_resumed",
			"module", "marketplace/escrow-order",
			"layer", "application",
			"order_id", updated.OrderID,
		)
		return updated, nil
	}

	// Refund path. Any credit posted by a racing acceptance comes back
	// first; the ledger flags the account for manual reconciliation when
	// the funds already left through a withdrawal.
	if err := u.Ledger.ReverseCredit(ctx, order.OrderID); err != nil {
		return entities.Order{}, err
	}

	note := cmd.Note
	if note == "" {
		note = "dispute resolved with refund"
	}
	updated, err := applyTransition(ctx, u.Orders, u.IDGenerator, transitionSpec{
		order:     order,
		from:      []entities.OrderStatus{entities.OrderStatusDisputed},
		to:        entities.OrderStatusRefunded,
		actorID:   cmd.Actor.UserID,
		note:      note,
		at:        clockNow(u.Clock),
		eventType: "order.refunded",
	})
	if err != nil {
		return entities.Order{}, err
	}

	if err := u.Payments.Refund(ctx, order.PaymentRef); err != nil {
		// The state is already refunded; the money movement retries out
		// of band. Failing here would unwind a committed resolution.
		logger.Error("gateway refund failed",
			"event", "order_refund_gateway_failed",
			"module", "marketplace/escrow-order",
			"layer", "application",
			"order_id", order.OrderID,
			"payment_ref", order.PaymentRef,
			"error", err.Error(),
		)
	}

	logger.Info("dispute resolved with refund",
		"event", "order_refunded",
		"module", "marketplace/escrow-order",
		"layer", "application",
		"order_id", updated.OrderID,
		"amount", updated.Amount,
	)
	return updated, nil
}
