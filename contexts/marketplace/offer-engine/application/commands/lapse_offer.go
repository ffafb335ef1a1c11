package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "bazaar/contexts/marketplace/offer-engine/application"
	"bazaar/contexts/marketplace/offer-engine/domain/entities"
	domainerrors "bazaar/contexts/marketplace/offer-engine/domain/errors"
	"bazaar/contexts/marketplace/offer-engine/ports"
)

type LapseOfferCommand struct {
	OfferID string
}

// LapseOfferUseCase expires an accepted offer whose order never reached
// payment. It is driven by the escrow engine's payment timeout sweep, not
// by a user, so there is no actor check. Lapsing an offer that already
// left the accepted state is a no-op.
type LapseOfferUseCase struct {
	Offers   ports.Repository
	Notifier ports.Notifier
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (u LapseOfferUseCase) Execute(ctx context.Context, cmd LapseOfferCommand) error {
	logger := application.ResolveLogger(u.Logger)

	offer, err := u.Offers.GetOffer(ctx, cmd.OfferID)
	if err != nil {
		return err
	}
	if offer.Status != entities.OfferStatusAccepted {
		return nil
	}

	now := u.now()
	err = u.Offers.UpdateOfferStatus(
		ctx,
		offer.OfferID,
		[]entities.OfferStatus{entities.OfferStatusAccepted},
		entities.OfferStatusExpired,
		0,
		now,
	)
	if err != nil {
		// A concurrent transition already moved the offer on; the sweep
		// has nothing left to do.
		if errors.Is(err, domainerrors.ErrStatusConflict) {
			return nil
		}
		return err
	}

	logger.Info("accepted offer lapsed",
		"event", "offer_lapsed",
		"module", "marketplace/offer-engine",
		"layer", "application",
		"offer_id", offer.OfferID,
		"listing_id", offer.ListingID,
	)
	notify(ctx, u.Notifier, ports.OfferEvent{
		EventType:  "offer.expired",
		OfferID:    offer.OfferID,
		ListingID:  offer.ListingID,
		BuyerID:    offer.BuyerID,
		SellerID:   offer.SellerID,
		Amount:     offer.EffectiveAmount(),
		OccurredAt: now,
	})
	return nil
}

func (u LapseOfferUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
