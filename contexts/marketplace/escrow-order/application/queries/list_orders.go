package queries

import (
	"context"

	"bazaar/contexts/marketplace/escrow-order/domain/entities"
	"bazaar/contexts/marketplace/escrow-order/ports"
)

type ListOrdersQuery struct {
	Actor  ports.Actor
	Role   string // "buyer" or "seller"
	Limit  int
	Offset int
}

type ListOrdersUseCase struct {
	Orders ports.Repository
}

func (u ListOrdersUseCase) Execute(ctx context.Context, q ListOrdersQuery) ([]entities.Order, error) {
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	if q.Role == "seller" {
		return u.Orders.ListBySeller(ctx, q.Actor.UserID, limit, offset)
	}
	return u.Orders.ListByBuyer(ctx, q.Actor.UserID, limit, offset)
}
