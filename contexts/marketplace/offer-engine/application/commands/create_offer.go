package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "bazaar/contexts/marketplace/offer-engine/application"
	"bazaar/contexts/marketplace/offer-engine/domain/entities"
	domainerrors "bazaar/contexts/marketplace/offer-engine/domain/errors"
	"bazaar/contexts/marketplace/offer-engine/domain/services"
	"bazaar/contexts/marketplace/offer-engine/ports"
)

type CreateOfferCommand struct {
	ListingID string
	BuyerID   string
	Amount    int64
	Message   string
}

type CreateOfferUseCase struct {
	Offers            ports.Repository
	Listings          ports.ListingSource
	Notifier          ports.Notifier
	Clock             ports.Clock
	IDGenerator       ports.IDGenerator
	OfferTTL          time.Duration
	CeilingMultiplier int
	Logger            *slog.Logger
}

func (u CreateOfferUseCase) Execute(ctx context.Context, cmd CreateOfferCommand) (entities.Offer, error) {
	logger := application.ResolveLogger(u.Logger)
	if strings.TrimSpace(cmd.ListingID) == "" || strings.TrimSpace(cmd.BuyerID) == "" || cmd.Amount <= 0 {
		return entities.Offer{}, domainerrors.ErrInvalidOffer
	}

	listing, err := u.Listings.GetListing(ctx, cmd.ListingID)
	if err != nil {
		return entities.Offer{}, err
	}
	if err := services.EvaluateOfferEligibility(
		listing.SellerID,
		listing.Purchasable,
		listing.Price,
		cmd.BuyerID,
		cmd.Amount,
		u.CeilingMultiplier,
	); err != nil {
		logger.Warn("offer rejected by policy",
			"event", "offer_create_rejected",
			"module", "marketplace/offer-engine",
			"layer", "application",
			"listing_id", cmd.ListingID,
			"buyer_id", cmd.BuyerID,
			"error", err.Error(),
		)
		return entities.Offer{}, err
	}

	offerID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Offer{}, err
	}
	now := u.now()
	offer, err := entities.NewOffer(
		offerID,
		cmd.ListingID,
		cmd.BuyerID,
		listing.SellerID,
		cmd.Amount,
		cmd.Message,
		now,
		now.Add(u.offerTTL()),
	)
	if err != nil {
		return entities.Offer{}, err
	}

	// The repository enforces the single-open-offer rule atomically; a
	// racing duplicate surfaces as ErrOpenOfferExists, never a second row.
	if err := u.Offers.CreateOffer(ctx, offer); err != nil {
		return entities.Offer{}, err
	}

	logger.Info("offer created",
		"event", "offer_created",
		"module", "marketplace/offer-engine",
		"layer", "application",
		"offer_id", offer.OfferID,
		"listing_id", offer.ListingID,
		"buyer_id", offer.BuyerID,
		"amount", offer.Amount,
	)
	notify(ctx, u.Notifier, ports.OfferEvent{
		EventType:  "offer.created",
		OfferID:    offer.OfferID,
		ListingID:  offer.ListingID,
		BuyerID:    offer.BuyerID,
		SellerID:   offer.SellerID,
		Amount:     offer.Amount,
		OccurredAt: now,
	})
	return offer, nil
}

func (u CreateOfferUseCase) offerTTL() time.Duration {
	if u.OfferTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return u.OfferTTL
}

func (u CreateOfferUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}

func notify(ctx context.Context, notifier ports.Notifier, event ports.OfferEvent) {
	if notifier == nil {
		return
	}
	notifier.OfferEvent(ctx, event)
}
