package unit

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	sellerledger "bazaar/contexts/finance-core/seller-ledger"
	escroworder "bazaar/contexts/marketplace/escrow-order"
	ordermemory "bazaar/contexts/marketplace/escrow-order/adapters/memory"
	ordercommands "bazaar/contexts/marketplace/escrow-order/application/commands"
	orderentities "bazaar/contexts/marketplace/escrow-order/domain/entities"
	ordererrors "bazaar/contexts/marketplace/escrow-order/domain/errors"
	orderports "bazaar/contexts/marketplace/escrow-order/ports"
	listingregistry "bazaar/contexts/marketplace/listing-registry"
	listingmemory "bazaar/contexts/marketplace/listing-registry/adapters/memory"
	listingentities "bazaar/contexts/marketplace/listing-registry/domain/entities"
	listingerrors "bazaar/contexts/marketplace/listing-registry/domain/errors"
	listingports "bazaar/contexts/marketplace/listing-registry/ports"
	offerengine "bazaar/contexts/marketplace/offer-engine"
	offermemory "bazaar/contexts/marketplace/offer-engine/adapters/memory"
	offercommands "bazaar/contexts/marketplace/offer-engine/application/commands"
	offererrors "bazaar/contexts/marketplace/offer-engine/domain/errors"
	offerports "bazaar/contexts/marketplace/offer-engine/ports"
	"bazaar/internal/platform/messaging"
	"bazaar/internal/platform/payments"
)

// world wires the marketplace modules together through the same port
// adapters the application bootstrap uses, with in-memory stores and the
// simulated payment gateway underneath.
type world struct {
	listings listingregistry.Module
	offers   offerengine.Module
	orders   escroworder.Module
	ledger   sellerledger.Module
	psp      *payments.Simulator
}

func newWorld(t *testing.T) *world {
	t.Helper()
	logger := slog.Default()

	listings := listingregistry.NewInMemoryModule(logger)
	psp := payments.NewSimulator(logger)
	ledger := sellerledger.NewInMemoryModule(psp, logger)

	offerStore := offermemory.NewStore()
	orderStore := ordermemory.NewStore()
	bus, err := messaging.NewBus(nil, logger)
	if err != nil {
		t.Fatalf("start bus: %v", err)
	}

	lapse := offercommands.LapseOfferUseCase{
		Offers: offerStore,
		Clock:  offerStore,
		Logger: logger,
	}

	orders := escroworder.NewModule(escroworder.Dependencies{
		Repository: orderStore,
		Outbox:     orderStore,
		Listings:   orderListings{store: listings.Store},
		Payments:   psp,
		Ledger:     ledger.Service,
		Offers:     offerLapser{lapse: lapse},
		Publisher:  bus,
		Clock:      orderStore,
		IDGen:      orderStore,
		Logger:     logger,
	})

	offers := offerengine.NewModule(offerengine.Dependencies{
		Repository: offerStore,
		Listings:   offerListings{store: listings.Store},
		Orders:     orderFactory{create: orders.CreateOrder},
		Clock:      offerStore,
		IDGen:      offerStore,
		Logger:     logger,
	})

	return &world{
		listings: listings,
		offers:   offers,
		orders:   orders,
		ledger:   ledger,
		psp:      psp,
	}
}

func (w *world) activeListing(t *testing.T, sellerID string, price int64) listingentities.Listing {
	t.Helper()
	listing, err := w.listings.Service.Create(context.Background(), sellerID, listingports.CreateListingInput{
		Title:    "Icon set",
		Type:     "template",
		Price:    price,
		Currency: "usd",
		Activate: true,
	})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return listing
}

func (w *world) pay(t *testing.T, order orderentities.Order) orderentities.Order {
	t.Helper()
	paid, err := w.orders.ConfirmPayment.Execute(context.Background(), ordercommands.ConfirmPaymentCommand{
		PaymentRef: order.PaymentRef,
	})
	if err != nil {
		t.Fatalf("confirm payment: %v", err)
	}
	return paid
}

func (w *world) deliver(t *testing.T, orderID string, sellerID string) orderentities.Order {
	t.Helper()
	ctx := context.Background()
	if _, err := w.orders.StartWork.Execute(ctx, ordercommands.StartWorkCommand{
		OrderID: orderID,
		Actor:   orderports.Actor{UserID: sellerID},
	}); err != nil {
		t.Fatalf("start work: %v", err)
	}
	delivered, err := w.orders.Deliver.Execute(ctx, ordercommands.DeliverOrderCommand{
		OrderID:     orderID,
		Actor:       orderports.Actor{UserID: sellerID},
		Message:     "final files attached",
		Attachments: []string{"s3://deliveries/final.zip"},
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	return delivered
}

type offerListings struct {
	store listingports.Repository
}

func (a offerListings) GetListing(ctx context.Context, listingID string) (offerports.ListingView, error) {
	listing, err := a.store.GetListing(ctx, listingID)
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

type orderListings struct {
	store *listingmemory.Store
}

func (a orderListings) GetListing(ctx context.Context, listingID string) (orderports.ListingView, error) {
	listing, err := a.store.GetListing(ctx, listingID)
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

func (a orderListings) MarkSold(ctx context.Context, listingID string) error {
	err := a.store.UpdateListingStatus(
		ctx,
		listingID,
		[]listingentities.ListingStatus{
			listingentities.ListingStatusActive,
			listingentities.ListingStatusInactive,
		},
		listingentities.ListingStatusSold,
		a.store.Now(),
	)
	if errors.Is(err, listingerrors.ErrStatusConflict) {
		return nil
	}
	return err
}

type offerLapser struct {
	lapse offercommands.LapseOfferUseCase
}

func (a offerLapser) Lapse(ctx context.Context, offerID string) error {
	return a.lapse.Execute(ctx, offercommands.LapseOfferCommand{OfferID: offerID})
}

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
