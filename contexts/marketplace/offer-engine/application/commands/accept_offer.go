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

type AcceptOfferCommand struct {
	OfferID string
	Actor   ports.Actor
}

type AcceptOfferResult struct {
	Offer    entities.Offer
	Order    ports.OrderRef
	Replayed bool
}

// AcceptOfferUseCase turns an open offer into an accepted one and opens
// its escrow order. The accept itself is a conditional update, so of two
// racing accepts exactly one wins; the loser sees a status conflict.
// Order creation is idempotent per offer, which also makes re-accepting
// an already-accepted offer a safe replay.
type AcceptOfferUseCase struct {
	Offers   ports.Repository
	Listings ports.ListingSource
	Orders   ports.OrderFactory
	Notifier ports.Notifier
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (u AcceptOfferUseCase) Execute(ctx context.Context, cmd AcceptOfferCommand) (AcceptOfferResult, error) {
	logger := application.ResolveLogger(u.Logger)

	offer, err := u.Offers.GetOffer(ctx, cmd.OfferID)
	if err != nil {
		return AcceptOfferResult{}, err
	}
	now := u.now()

	if offer.Status == entities.OfferStatusAccepted {
		// The replay hands back the linked order, so it is restricted to
		// the same parties the live accept admits.
		party := cmd.Actor.UserID == offer.SellerID || cmd.Actor.UserID == offer.BuyerID
		if !cmd.Actor.Admin && !party {
			return AcceptOfferResult{}, domainerrors.ErrNotListingSeller
		}
		order, err := u.createOrder(ctx, offer, "")
		if err != nil {
			return AcceptOfferResult{}, err
		}
		return AcceptOfferResult{Offer: offer, Order: order, Replayed: true}, nil
	}

	switch offer.EffectiveStatus(now) {
	case entities.OfferStatusPending:
		if !cmd.Actor.Admin && cmd.Actor.UserID != offer.SellerID {
			return AcceptOfferResult{}, domainerrors.ErrNotListingSeller
		}
	case entities.OfferStatusCountered:
		// A countered offer is accepted by the buyer at the counter value.
		if !cmd.Actor.Admin && cmd.Actor.UserID != offer.BuyerID {
			return AcceptOfferResult{}, domainerrors.ErrNotOfferBuyer
		}
	case entities.OfferStatusExpired:
		return AcceptOfferResult{}, domainerrors.ErrOfferExpired
	default:
		return AcceptOfferResult{}, domainerrors.ErrStatusConflict
	}

	listing, err := u.Listings.GetListing(ctx, offer.ListingID)
	if err != nil {
		return AcceptOfferResult{}, err
	}
	if listing.Sold || !listing.Purchasable {
		return AcceptOfferResult{}, domainerrors.ErrListingUnavailable
	}

	previous := offer.Status
	if err := u.Offers.UpdateOfferStatus(
		ctx,
		offer.OfferID,
		[]entities.OfferStatus{entities.OfferStatusPending, entities.OfferStatusCountered},
		entities.OfferStatusAccepted,
		0,
		now,
	); err != nil {
		return AcceptOfferResult{}, err
	}
	offer.Status = entities.OfferStatusAccepted
	offer.UpdatedAt = now

	order, err := u.createOrder(ctx, offer, listing.Currency)
	if err != nil {
		// Revert so the negotiation is not stuck accepted without an
		// order; if the revert loses a race the offer stays accepted and
		// a retried accept replays order creation.
		revertErr := u.Offers.UpdateOfferStatus(
			ctx,
			offer.OfferID,
			[]entities.OfferStatus{entities.OfferStatusAccepted},
			previous,
			0,
			u.now(),
		)
		if revertErr != nil {
			logger.Error("offer accept revert failed",
				"event", "offer_accept_revert_failed",
				"module", "marketplace/offer-engine",
				"layer", "application",
				"offer_id", offer.OfferID,
				"error", revertErr.Error(),
			)
		}
		return AcceptOfferResult{}, err
	}

	logger.Info("offer accepted",
		"event", "offer_accepted",
		"module", "marketplace/offer-engine",
		"layer", "application",
		"offer_id", offer.OfferID,
		"listing_id", offer.ListingID,
		"order_id", order.OrderID,
		"amount", offer.EffectiveAmount(),
	)
	notify(ctx, u.Notifier, ports.OfferEvent{
		EventType:  "offer.accepted",
		OfferID:    offer.OfferID,
		ListingID:  offer.ListingID,
		BuyerID:    offer.BuyerID,
		SellerID:   offer.SellerID,
		Amount:     offer.EffectiveAmount(),
		OccurredAt: now,
	})
	return AcceptOfferResult{Offer: offer, Order: order}, nil
}

func (u AcceptOfferUseCase) createOrder(ctx context.Context, offer entities.Offer, currency string) (ports.OrderRef, error) {
	return u.Orders.CreateFromOffer(ctx, ports.OrderFromOfferInput{
		OfferID:   offer.OfferID,
		ListingID: offer.ListingID,
		BuyerID:   offer.BuyerID,
		SellerID:  offer.SellerID,
		Amount:    offer.EffectiveAmount(),
		Currency:  currency,
	})
}

func (u AcceptOfferUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
