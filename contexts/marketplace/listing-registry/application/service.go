package application

import (
	"context"
	"log/slog"
	"time"

	"bazaar/contexts/marketplace/listing-registry/domain/entities"
	domainerrors "bazaar/contexts/marketplace/listing-registry/domain/errors"
	"bazaar/contexts/marketplace/listing-registry/ports"
)

type Service struct {
	Repo   ports.Repository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (s Service) Create(ctx context.Context, sellerID string, input ports.CreateListingInput) (entities.Listing, error) {
	listingID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Listing{}, err
	}

	status := entities.ListingStatusDraft
	if input.Activate {
		status = entities.ListingStatusActive
	}
	listing, err := entities.NewListing(
		listingID,
		sellerID,
		input.Title,
		input.Type,
		input.Price,
		input.Currency,
		status,
		s.now(),
	)
	if err != nil {
		return entities.Listing{}, err
	}

	if err := s.Repo.CreateListing(ctx, listing); err != nil {
		return entities.Listing{}, err
	}

	resolveLogger(s.Logger).Info("listing created",
		"event", "listing_created",
		"module", "marketplace/listing-registry",
		"layer", "application",
		"listing_id", listing.ListingID,
		"seller_id", listing.SellerID,
		"status", string(listing.Status),
	)
	return listing, nil
}

func (s Service) Get(ctx context.Context, listingID string) (entities.Listing, error) {
	return s.Repo.GetListing(ctx, listingID)
}

func (s Service) ListBySeller(ctx context.Context, sellerID string, limit int, offset int) ([]entities.Listing, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.ListBySeller(ctx, sellerID, limit, offset)
}

func (s Service) Update(ctx context.Context, actor ports.Actor, listingID string, input ports.UpdateListingInput) (entities.Listing, error) {
	listing, err := s.ownedListing(ctx, actor, listingID)
	if err != nil {
		return entities.Listing{}, err
	}
	if listing.Terminal() {
		return entities.Listing{}, domainerrors.ErrListingSold
	}

	if input.Title != "" {
		listing.Title = input.Title
	}
	if input.Price != 0 {
		if input.Price < 0 {
			return entities.Listing{}, domainerrors.ErrInvalidListing
		}
		listing.Price = input.Price
	}
	listing.UpdatedAt = s.now()

	if err := s.Repo.UpdateListingFields(ctx, listing); err != nil {
		return entities.Listing{}, err
	}
	return listing, nil
}

// Activate and Deactivate are the seller visibility toggle; both refuse
// sold listings.
func (s Service) Activate(ctx context.Context, actor ports.Actor, listingID string) (entities.Listing, error) {
	return s.toggle(ctx, actor, listingID, entities.ListingStatusActive,
		[]entities.ListingStatus{entities.ListingStatusDraft, entities.ListingStatusInactive})
}

func (s Service) Deactivate(ctx context.Context, actor ports.Actor, listingID string) (entities.Listing, error) {
	return s.toggle(ctx, actor, listingID, entities.ListingStatusInactive,
		[]entities.ListingStatus{entities.ListingStatusDraft, entities.ListingStatusActive})
}

// MarkSold flips an active listing to sold when its order is paid.
// Called by the escrow engine through its listing port, never by users.
func (s Service) MarkSold(ctx context.Context, listingID string) error {
	err := s.Repo.UpdateListingStatus(
		ctx,
		listingID,
		[]entities.ListingStatus{entities.ListingStatusActive},
		entities.ListingStatusSold,
		s.now(),
	)
	if err != nil {
		return err
	}
	resolveLogger(s.Logger).Info("listing sold",
		"event", "listing_sold",
		"module", "marketplace/listing-registry",
		"layer", "application",
		"listing_id", listingID,
	)
	return nil
}

func (s Service) toggle(
	ctx context.Context,
	actor ports.Actor,
	listingID string,
	to entities.ListingStatus,
	from []entities.ListingStatus,
) (entities.Listing, error) {
	listing, err := s.ownedListing(ctx, actor, listingID)
	if err != nil {
		return entities.Listing{}, err
	}
	if listing.Terminal() {
		return entities.Listing{}, domainerrors.ErrListingSold
	}
	if listing.Status == to {
		return listing, nil
	}

	if err := s.Repo.UpdateListingStatus(ctx, listingID, from, to, s.now()); err != nil {
		return entities.Listing{}, err
	}
	return s.Repo.GetListing(ctx, listingID)
}

func (s Service) ownedListing(ctx context.Context, actor ports.Actor, listingID string) (entities.Listing, error) {
	listing, err := s.Repo.GetListing(ctx, listingID)
	if err != nil {
		return entities.Listing{}, err
	}
	if !actor.Admin && listing.SellerID != actor.UserID {
		return entities.Listing{}, domainerrors.ErrNotListingOwner
	}
	return listing, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
