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

type CounterOfferCommand struct {
	OfferID       string
	Actor         ports.Actor
	CounterAmount int64
}

// CounterOfferUseCase lets the seller answer a pending offer with a
// different price. The counter value is bound by the same ceiling as the
// original offer and puts the buyer back on turn.
type CounterOfferUseCase struct {
	Offers            ports.Repository
	Listings          ports.ListingSource
	Notifier          ports.Notifier
	Clock             ports.Clock
	CeilingMultiplier int
	Logger            *slog.Logger
}

func (u CounterOfferUseCase) Execute(ctx context.Context, cmd CounterOfferCommand) (entities.Offer, error) {
	logger := application.ResolveLogger(u.Logger)
	if cmd.CounterAmount <= 0 {
		return entities.Offer{}, domainerrors.ErrInvalidOffer
	}

	offer, err := u.Offers.GetOffer(ctx, cmd.OfferID)
	if err != nil {
		return entities.Offer{}, err
	}
	if !cmd.Actor.Admin && cmd.Actor.UserID != offer.SellerID {
		return entities.Offer{}, domainerrors.ErrNotListingSeller
	}

	now := u.now()
	switch offer.EffectiveStatus(now) {
	case entities.OfferStatusPending:
	case entities.OfferStatusExpired:
		return entities.Offer{}, domainerrors.ErrOfferExpired
	default:
		return entities.Offer{}, domainerrors.ErrStatusConflict
	}

	listing, err := u.Listings.GetListing(ctx, offer.ListingID)
	if err != nil {
		return entities.Offer{}, err
	}
	multiplier := u.CeilingMultiplier
	if multiplier <= 0 {
		multiplier = 3
	}
	if ceiling := listing.Price * int64(multiplier); cmd.CounterAmount > ceiling {
		return entities.Offer{}, &domainerrors.CeilingError{Ceiling: ceiling}
	}

	if err := u.Offers.UpdateOfferStatus(
		ctx,
		offer.OfferID,
		[]entities.OfferStatus{entities.OfferStatusPending},
		entities.OfferStatusCountered,
		cmd.CounterAmount,
		now,
	); err != nil {
		return entities.Offer{}, err
	}
	offer.Status = entities.OfferStatusCountered
	offer.CounterAmount = cmd.CounterAmount
	offer.UpdatedAt = now

	logger.Info("offer countered",
		"event", "offer_countered",
		"module", "marketplace/offer-engine",
		"layer", "application",
		"offer_id", offer.OfferID,
		"listing_id", offer.ListingID,
		"counter_amount", cmd.CounterAmount,
	)
	notify(ctx, u.Notifier, ports.OfferEvent{
		EventType:  "offer.countered",
		OfferID:    offer.OfferID,
		ListingID:  offer.ListingID,
		BuyerID:    offer.BuyerID,
		SellerID:   offer.SellerID,
		Amount:     cmd.CounterAmount,
		OccurredAt: now,
	})
	return offer, nil
}

func (u CounterOfferUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
