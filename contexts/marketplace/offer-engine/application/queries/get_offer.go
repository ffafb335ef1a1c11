package queries

import (
	"context"
	"time"

	"bazaar/contexts/marketplace/offer-engine/domain/entities"
	domainerrors "bazaar/contexts/marketplace/offer-engine/domain/errors"
	"bazaar/contexts/marketplace/offer-engine/ports"
)

type GetOfferQuery struct {
	OfferID string
	Actor   ports.Actor
}

// GetOfferUseCase reads a single offer. Offers are visible to their own
// buyer and seller and to admins; anyone else gets not-found rather than
// a confirmation the offer exists.
type GetOfferUseCase struct {
	Offers ports.Repository
	Clock  ports.Clock
}

func (u GetOfferUseCase) Execute(ctx context.Context, q GetOfferQuery) (entities.Offer, error) {
	offer, err := u.Offers.GetOffer(ctx, q.OfferID)
	if err != nil {
		return entities.Offer{}, err
	}
	if !q.Actor.Admin && q.Actor.UserID != offer.BuyerID && q.Actor.UserID != offer.SellerID {
		return entities.Offer{}, domainerrors.ErrOfferNotFound
	}
	offer.Status = offer.EffectiveStatus(u.now())
	return offer, nil
}

func (u GetOfferUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
