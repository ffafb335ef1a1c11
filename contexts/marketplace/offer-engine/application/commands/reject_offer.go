package commands

import (
	"context"
	"log/slog"
	"time"

	application "bazaar/contexts/marketplace/offer-engine/application"
	"bazaar/contexts/marketplace/offer-engine/domain/entities"
	domainerrors "bazaar/contexts/marketplace/offer-engine/domain/errors"
	"bazaar/contexts/marketplace/offer-engine/ports"
)

type RejectOfferCommand struct {
	OfferID string
	Actor   ports.Actor
	Reason  string
}

// RejectOfferUseCase closes an open offer. The seller rejects at any
// open state; while a counter is on the table the buyer may reject the
// counter instead of withdrawing.
type RejectOfferUseCase struct {
	Offers   ports.Repository
	Notifier ports.Notifier
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (u RejectOfferUseCase) Execute(ctx context.Context, cmd RejectOfferCommand) (entities.Offer, error) {
	logger := application.ResolveLogger(u.Logger)

	offer, err := u.Offers.GetOffer(ctx, cmd.OfferID)
	if err != nil {
		return entities.Offer{}, err
	}
	now := u.now()
	status := offer.EffectiveStatus(now)
	switch status {
	case entities.OfferStatusPending, entities.OfferStatusCountered:
	case entities.OfferStatusExpired:
		return entities.Offer{}, domainerrors.ErrOfferExpired
	default:
		return entities.Offer{}, domainerrors.ErrStatusConflict
	}

	seller := cmd.Actor.UserID == offer.SellerID
	buyerOnCounter := status == entities.OfferStatusCountered && cmd.Actor.UserID == offer.BuyerID
	if !cmd.Actor.Admin && !seller && !buyerOnCounter {
		return entities.Offer{}, domainerrors.ErrNotListingSeller
	}

	if err := u.Offers.UpdateOfferStatus(
		ctx,
		offer.OfferID,
		[]entities.OfferStatus{entities.OfferStatusPending, entities.OfferStatusCountered},
		entities.OfferStatusRejected,
		0,
		now,
	); err != nil {
		return entities.Offer{}, err
	}
	offer.Status = entities.OfferStatusRejected
	offer.UpdatedAt = now

	logger.Info("offer rejected",
		"event", "offer_rejected",
		"module", "marketplace/offer-engine",
		"layer", "application",
		"offer_id", offer.OfferID,
		"listing_id", offer.ListingID,
	)
	notify(ctx, u.Notifier, ports.OfferEvent{
		EventType:  "offer.rejected",
		OfferID:    offer.OfferID,
		ListingID:  offer.ListingID,
		BuyerID:    offer.BuyerID,
		SellerID:   offer.SellerID,
		Amount:     offer.EffectiveAmount(),
		OccurredAt: now,
	})
	return offer, nil
}

func (u RejectOfferUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
