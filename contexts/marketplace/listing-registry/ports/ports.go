package ports

import (
	"context"
	"time"

	"bazaar/contexts/marketplace/listing-registry/domain/entities"
)

// Actor identifies the caller of a mutating operation. Admin actors
// bypass the ownership restriction, matching the guard's override.
type Actor struct {
	UserID string
	Admin  bool
}

type CreateListingInput struct {
	Title    string
	Type     string
	Price    int64
	Currency string
	Activate bool
}

type UpdateListingInput struct {
	Title string
	Price int64
}

type Repository interface {
	CreateListing(ctx context.Context, listing entities.Listing) error
	GetListing(ctx context.Context, listingID string) (entities.Listing, error)
	ListBySeller(ctx context.Context, sellerID string, limit int, offset int) ([]entities.Listing, error)
	UpdateListingFields(ctx context.Context, listing entities.Listing) error
	// UpdateListingStatus performs a conditional transition: it succeeds
	// only while the stored status is one of from. Losers get
	// ErrStatusConflict.
	UpdateListingStatus(
		ctx context.Context,
		listingID string,
		from []entities.ListingStatus,
		to entities.ListingStatus,
		updatedAt time.Time,
	) error
	OwnerOf(ctx context.Context, listingID string) (string, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
