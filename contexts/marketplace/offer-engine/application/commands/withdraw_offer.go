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

type WithdrawOfferCommand struct {
	OfferID string
	Actor   ports.Actor
}

// WithdrawOfferUseCase lets the buyer pull an open offer back before the
// seller acts on it. Withdrawal also frees the single open slot for the
// (buyer, listing) pair so a fresh offer can be made.
type WithdrawOfferUseCase struct {
	Offers   ports.Repository
	Notifier ports.Notifier
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (u WithdrawOfferUseCase) Execute(ctx context.Context, cmd WithdrawOfferCommand) (entities.Offer, error) {
	logger := application.ResolveLogger(u.Logger)

	offer, err := u.Offers.GetOffer(ctx, cmd.OfferID)
	if err != nil {
		return entities.Offer{}, err
	}
	if !cmd.Actor.Admin && cmd.Actor.UserID != offer.BuyerID {
		return entities.Offer{}, domainerrors.ErrNotOfferBuyer
	}

	now := u.now()
	switch offer.EffectiveStatus(now) {
	case entities.OfferStatusPending, entities.OfferStatusCountered:
	case entities.OfferStatusExpired:
		return entities.Offer{}, domainerrors.ErrOfferExpired
	default:
		return entities.Offer{}, domainerrors.ErrStatusConflict
	}

	if err := u.Offers.UpdateOfferStatus(
		ctx,
		offer.OfferID,
		[]entities.OfferStatus{entities.OfferStatusPending, entities.OfferStatusCountered},
		entities.OfferStatusWithdrawn,
		0,
		now,
	); err != nil {
		return entities.Offer{}, err
	}
	offer.Status = entities.OfferStatusWithdrawn
	offer.UpdatedAt = now

	logger.Info("offer withdrawn",
		"event", "offer_withdrawn",
		"module", "marketplace/offer-engine",
		"layer", "application",
		"offer_id", offer.OfferID,
		"listing_id", offer.ListingID,
	)
	notify(ctx, u.Notifier, ports.OfferEvent{
		EventType:  "offer.withdrawn",
		OfferID:    offer.OfferID,
		ListingID:  offer.ListingID,
		BuyerID:    offer.BuyerID,
		SellerID:   offer.SellerID,
		Amount:     offer.EffectiveAmount(),
		OccurredAt: now,
	})
	return offer, nil
}

func (u WithdrawOfferUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
