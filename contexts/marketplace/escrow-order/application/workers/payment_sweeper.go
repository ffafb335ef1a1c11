package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "bazaar/contexts/marketplace/escrow-order/application"
	"bazaar/contexts/marketplace/escrow-order/domain/entities"
	domainerrors "bazaar/contexts/marketplace/escrow-order/domain/errors"
	"bazaar/contexts/marketplace/escrow-order/ports"
)

// PaymentTimeoutSweeper cancels orders that never got paid. The origin
// offer, when there is one, lapses to expired so the negotiation does
// not look alive for an order that is gone.
type PaymentTimeoutSweeper struct {
	Orders      ports.Repository
	Offers      ports.OfferLapser
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	BatchSize   int
	Logger      *slog.Logger
}

func (s PaymentTimeoutSweeper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(s.Logger)
	limit := s.BatchSize
	if limit <= 0 {
		limit = 100
	}
	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}

	overdue, err := s.Orders.FindPaymentOverdue(ctx, now, limit)
	if err != nil {
		logger.Error("payment timeout scan failed",
			"event", "order_payment_timeout_scan_failed",
			"module", "marketplace/escrow-order",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	cancelled := 0
	for _, order := range overdue {
		auditID, err := s.IDGenerator.NewID(ctx)
		if err != nil {
			return err
		}
		eventID, err := s.IDGenerator.NewID(ctx)
		if err != nil {
			return err
		}
		_, err = s.Orders.ApplyTransition(ctx, ports.Transition{
			OrderID: order.OrderID,
			AuditID: auditID,
			From:    []entities.OrderStatus{entities.OrderStatusPendingPayment},
			To:      entities.OrderStatusCancelled,
			ActorID: "system",
			Note:    "payment timed out",
			At:      now,
			Event: &ports.OrderEvent{
				EventID:      eventID,
				EventType:    "order.cancelled",
				OrderID:      order.OrderID,
				ListingID:    order.ListingID,
				BuyerID:      order.BuyerID,
				SellerID:     order.SellerID,
				Amount:       order.Amount,
				PartitionKey: order.OrderID,
				OccurredAt:   now,
			},
		})
		if err != nil {
			// A payment confirmation racing the sweep keeps the order.
			if errors.Is(err, domainerrors.ErrStatusConflict) {
				continue
			}
			logger.Error("payment timeout cancel failed",
				"event", "order_payment_timeout_cancel_failed",
				"module", "marketplace/escrow-order",
				"layer", "worker",
				"order_id", order.OrderID,
				"error", err.Error(),
			)
			continue
		}
		cancelled++

		if order.OriginOfferID != "" && s.Offers != nil {
			if err := s.Offers.Lapse(ctx, order.OriginOfferID); err != nil {
				logger.Error("origin offer lapse failed",
					"event", "order_origin_offer_lapse_failed",
					"module", "marketplace/escrow-order",
					"layer", "worker",
					"order_id", order.OrderID,
					"offer_id", order.OriginOfferID,
					"error", err.Error(),
				)
			}
		}
	}

	if cancelled > 0 {
		logger.Info("payment timeout sweep completed",
			"event", "order_payment_timeout_completed",
			"module", "marketplace/escrow-order",
			"layer", "worker",
			"cancelled_count", cancelled,
		)
	}
	return nil
}
