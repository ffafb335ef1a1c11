package ports

import (
	"context"
	"time"

	"bazaar/contexts/marketplace/offer-engine/domain/entities"
)

// Actor identifies the caller of a mutating operation.
type Actor struct {
	UserID string
	Admin  bool
}

// ListingView is the engine's read model of a listing, supplied by the
// listing registry through wiring.
type ListingView struct {
	ListingID   string
	SellerID    string
	Price       int64
	Currency    string
	Purchasable bool
	Sold        bool
}

type ListingSource interface {
	GetListing(ctx context.Context, listingID string) (ListingView, error)
}

// OrderRef is what the escrow engine reports back for a created order.
type OrderRef struct {
	OrderID string
	Status  string
}

// OrderFromOfferInput carries everything the escrow engine needs to open
// an order for an accepted offer.
type OrderFromOfferInput struct {
	OfferID   string
	ListingID string
	BuyerID   string
	SellerID  string
	Amount    int64
	Currency  string
}

// OrderFactory opens exactly one order per accepting offer; repeated
// calls for the same offer return the existing order.
type OrderFactory interface {
	CreateFromOffer(ctx context.Context, input OrderFromOfferInput) (OrderRef, error)
}

type Repository interface {
	// CreateOffer persists a new offer and enforces the single-open-offer
	// rule per (buyer, listing), returning ErrOpenOfferExists on a clash.
	CreateOffer(ctx context.Context, offer entities.Offer) error
	GetOffer(ctx context.Context, offerID string) (entities.Offer, error)
	ListByBuyer(ctx context.Context, buyerID string, limit int, offset int) ([]entities.Offer, error)
	ListBySeller(ctx context.Context, sellerID string, limit int, offset int) ([]entities.Offer, error)
	// UpdateOfferStatus performs a conditional transition; it succeeds only
	// while the stored status is one of from. counterAmount is persisted
	// when non-zero.
	UpdateOfferStatus(
		ctx context.Context,
		offerID string,
		from []entities.OfferStatus,
		to entities.OfferStatus,
		counterAmount int64,
		updatedAt time.Time,
	) error
	// ExpireOpenOffers persists the expired status for every open offer
	// past its deadline and reports how many were swept.
	ExpireOpenOffers(ctx context.Context, now time.Time) (int, error)
	OwnerOf(ctx context.Context, offerID string) (string, error)
}

// OfferEvent is handed to the notifier after a successful transition.
// Delivery is fire-and-forget; the engine never fails on it.
type OfferEvent struct {
	EventType string
	OfferID   string
	ListingID string
	BuyerID   string
	SellerID  string
	Amount    int64
	OccurredAt time.Time
}

type Notifier interface {
	OfferEvent(ctx context.Context, event OfferEvent)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
