package queries

import (
	"context"
	"time"

	"bazaar/contexts/marketplace/offer-engine/domain/entities"
	"bazaar/contexts/marketplace/offer-engine/ports"
)

type ListOffersQuery struct {
	Actor  ports.Actor
	Role   string // "buyer" or "seller"
	Limit  int
	Offset int
}

// ListOffersUseCase pages through the caller's own offers, either the
// ones they made or the ones made against their listings.
type ListOffersUseCase struct {
	Offers ports.Repository
	Clock  ports.Clock
}

func (u ListOffersUseCase) Execute(ctx context.Context, q ListOffersQuery) ([]entities.Offer, error) {
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	var (
		offers []entities.Offer
		err    error
	)
	if q.Role == "seller" {
		offers, err = u.Offers.ListBySeller(ctx, q.Actor.UserID, limit, offset)
	} else {
		offers, err = u.Offers.ListByBuyer(ctx, q.Actor.UserID, limit, offset)
	}
	if err != nil {
		return nil, err
	}

	now := u.now()
	for i := range offers {
		offers[i].Status = offers[i].EffectiveStatus(now)
	}
	return offers, nil
}

func (u ListOffersUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
