package commands

import (
	"context"
	"time"

	"bazaar/contexts/marketplace/escrow-order/domain/entities"
	"bazaar/contexts/marketplace/escrow-order/ports"
)

// transitionSpec is the command-side description of a state change; the
// helper stamps identifiers and packs the audit and outbox rows before
// handing it to the repository.
type transitionSpec struct {
	order              entities.Order
	from               []entities.OrderStatus
	to                 entities.OrderStatus
	actorID            string
	note               string
	at                 time.Time
	eventType          string
	setDeliveredAt     *time.Time
	incrementRevisions bool
	delivery           *entities.Delivery
}

func applyTransition(
	ctx context.Context,
	repo ports.Repository,
	idgen ports.IDGenerator,
	spec transitionSpec,
) (entities.Order, error) {
	auditID, err := idgen.NewID(ctx)
	if err != nil {
		return entities.Order{}, err
	}
	transition := ports.Transition{
		OrderID: spec.order.OrderID,
		AuditID: auditID,
		From:    spec.from,
		To:      spec.to,
		ActorID: spec.actorID,
		Note:    spec.note,
		At:      spec.at,

		SetDeliveredAt:     spec.setDeliveredAt,
		IncrementRevisions: spec.incrementRevisions,
		Delivery:           spec.delivery,
	}
	if spec.eventType != "" {
		eventID, err := idgen.NewID(ctx)
		if err != nil {
			return entities.Order{}, err
		}
		transition.Event = &ports.OrderEvent{
			EventID:      eventID,
			EventType:    spec.eventType,
			OrderID:      spec.order.OrderID,
			ListingID:    spec.order.ListingID,
			BuyerID:      spec.order.BuyerID,
			SellerID:     spec.order.SellerID,
			Amount:       spec.order.Amount,
			PartitionKey: spec.order.OrderID,
			OccurredAt:   spec.at,
		}
	}
	return repo.ApplyTransition(ctx, transition)
}

func clockNow(clock ports.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}
