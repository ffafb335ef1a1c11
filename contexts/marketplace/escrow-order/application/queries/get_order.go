package queries

import (
	"context"

	"bazaar/contexts/marketplace/escrow-order/domain/entities"
	domainerrors "bazaar/contexts/marketplace/escrow-order/domain/errors"
	"bazaar/contexts/marketplace/escrow-order/ports"
)

type GetOrderQuery struct {
	OrderID string
	Actor   ports.Actor
}

type OrderDetail struct {
	Order      entities.Order
	Deliveries []entities.Delivery
	Audit      []entities.AuditEntry
}

// GetOrderUseCase reads one order with its deliveries and audit trail.
// Orders are visible only to their buyer, seller, and admins.
type GetOrderUseCase struct {
	Orders ports.Repository
}

func (u GetOrderUseCase) Execute(ctx context.Context, q GetOrderQuery) (OrderDetail, error) {
	order, err := u.Orders.GetOrder(ctx, q.OrderID)
	if err != nil {
		return OrderDetail{}, err
	}
	if !q.Actor.Admin && q.Actor.UserID != order.BuyerID && q.Actor.UserID != order.SellerID {
		return OrderDetail{}, domainerrors.ErrOrderNotFound
	}

	deliveries, err := u.Orders.ListDeliveries(ctx, order.OrderID)
	if err != nil {
		return OrderDetail{}, err
	}
	audit, err := u.Orders.ListAudit(ctx, order.OrderID)
	if err != nil {
		return OrderDetail{}, err
	}
	return OrderDetail{Order: order, Deliveries: deliveries, Audit: audit}, nil
}
