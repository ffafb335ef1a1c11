package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	guarderrors "bazaar/contexts/identity-access/access-guard/domain/errors"
	ordercommands "bazaar/contexts/marketplace/escrow-order/application/commands"
	ordererrors "bazaar/contexts/marketplace/escrow-order/domain/errors"
	orderports "bazaar/contexts/marketplace/escrow-order/ports"
	listingerrors "bazaar/contexts/marketplace/listing-registry/domain/errors"
	listingentities "bazaar/contexts/marketplace/listing-registry/domain/entities"
	listingports "bazaar/contexts/marketplace/listing-registry/ports"
	offercommands "bazaar/contexts/marketplace/offer-engine/application/commands"
	offererrors "bazaar/contexts/marketplace/offer-engine/domain/errors"
	offerports "bazaar/contexts/marketplace/offer-engine/ports"
)

// Cross-module glue lives here so contexts stay decoupled: each module
// declares the port it needs and bootstrap adapts a sibling onto it.

// offerListingSource feeds the offer engine the listing registry's state.
type offerListingSource struct {
	listings listingports.Repository
}

func (a offerListingSource) GetListing(ctx context.Context, listingID string) (offerports.ListingView, error) {
	listing, err := a.listings.GetListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, listingerrors.ErrListingNotFound) {
			return offerports.ListingView{}, offererrors.ErrListingUnavailable
		}
		return offerports.ListingView{}, err
	}
	return offerports.ListingView{
		ListingID:   listing.ListingID,
		SellerID:    listing.SellerID,
		Price:       listing.Price,
		Currency:    listing.Currency,
		Purchasable: listing.Purchasable(),
		Sold:        listing.Terminal(),
	}, nil
}

// orderListingSource is the escrow engine's view, plus the sold flip on
// payment confirmation.
type orderListingSource struct {
	listings listingports.Repository
	clock    listingports.Clock
}

func (a orderListingSource) GetListing(ctx context.Context, listingID string) (orderports.ListingView, error) {
	listing, err := a.listings.GetListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, listingerrors.ErrListingNotFound) {
			return orderports.ListingView{}, ordererrors.ErrListingUnavailable
		}
		return orderports.ListingView{}, err
	}
	return orderports.ListingView{
		ListingID:   listing.ListingID,
		SellerID:    listing.SellerID,
		Price:       listing.Price,
		Currency:    listing.Currency,
		Purchasable: listing.Purchasable(),
		Sold:        listing.Terminal(),
	}, nil
}

func (a orderListingSource) MarkSold(ctx context.Context, listingID string) error {
	err := a.listings.UpdateListingStatus(
		ctx,
		listingID,
		[]listingentities.ListingStatus{
			listingentities.ListingStatusActive,
			listingentities.ListingStatusInactive,
		},
		listingentities.ListingStatusSold,
		a.clock.Now(),
	)
	if errors.Is(err, listingerrors.ErrStatusConflict) {
		// Already sold; the paid order stands either way.
		return nil
	}
	return err
}

// orderFactory lets accepted offers open escrow orders.
type orderFactory struct {
	create ordercommands.CreateOrderUseCase
}

func (a orderFactory) CreateFromOffer(ctx context.Context, input offerports.OrderFromOfferInput) (offerports.OrderRef, error) {
	order, err := a.create.CreateFromOffer(ctx, ordercommands.CreateFromOfferCommand{
		OfferID:   input.OfferID,
		ListingID: input.ListingID,
		BuyerID:   input.BuyerID,
		SellerID:  input.SellerID,
		Amount:    input.Amount,
		Currency:  input.Currency,
	})
	if err != nil {
		return offerports.OrderRef{}, err
	}
	return offerports.OrderRef{OrderID: order.OrderID, Status: string(order.Status)}, nil
}

// offerLapser lets the payment timeout sweep expire the originating offer.
type offerLapser struct {
	lapse offercommands.LapseOfferUseCase
}

func (a offerLapser) Lapse(ctx context.Context, offerID string) error {
	return a.lapse.Execute(ctx, offercommands.LapseOfferCommand{OfferID: offerID})
}

// logNotifier emits offer lifecycle events to the structured log until a
// user-facing notification channel is wired.
type logNotifier struct {
	logger *slog.Logger
}

func (n logNotifier) OfferEvent(_ context.Context, event offerports.OfferEvent) {
	if n.logger == nil {
		return
	}
	n.logger.Info("offer event",
		"event", "offer_notification",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"event_type", event.EventType,
		"offer_id", event.OfferID,
		"listing_id", event.ListingID,
		"buyer_id", event.BuyerID,
		"seller_id", event.SellerID,
	)
}

// ownerResolver answers the guard's ownership questions by dispatching on
// resource type to the owning module's store.
type ownerResolver struct {
	listings listingports.Repository
	offers   offerports.Repository
	orders   orderports.Repository
}

func (d ownerResolver) OwnerOf(ctx context.Context, resourceType string, resourceID string) (string, error) {
	switch resourceType {
	case "listing":
		ownerID, err := d.listings.OwnerOf(ctx, resourceID)
		return ownerID, mapOwnerErr(err, listingerrors.ErrListingNotFound)
	case "offer":
		ownerID, err := d.offers.OwnerOf(ctx, resourceID)
		return ownerID, mapOwnerErr(err, offererrors.ErrOfferNotFound)
	case "order":
		ownerID, err := d.orders.OwnerOf(ctx, resourceID)
		return ownerID, mapOwnerErr(err, ordererrors.ErrOrderNotFound)
	default:
		return "", guarderrors.ErrUnknownResource
	}
}

func mapOwnerErr(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, notFound) {
		return guarderrors.ErrNotFound
	}
	return err
}
