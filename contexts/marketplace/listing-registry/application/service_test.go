package application

import (
	"context"
	"testing"

	"bazaar/contexts/marketplace/listing-registry/adapters/memory"
	"bazaar/contexts/marketplace/listing-registry/domain/entities"
	domainerrors "bazaar/contexts/marketplace/listing-registry/domain/errors"
	"bazaar/contexts/marketplace/listing-registry/ports"
)

func newService() (Service, *memory.Store) {
	store := memory.NewStore()
	return Service{Repo: store, Clock: store, IDGen: store}, store
}

func TestCreateListingValidation(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	if _, err := service.Create(ctx, "seller_1", ports.CreateListingInput{
		Title: "Logo pack", Price: 0,
	}); err != domainerrors.ErrInvalidListing {
		t.Fatalf("expected invalid listing for zero price, got %v", err)
	}

	listing, err := service.Create(ctx, "seller_1", ports.CreateListingInput{
		Title: "Logo pack", Price: 100, Activate: true,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if listing.Status != entities.ListingStatusActive {
		t.Fatalf("expected active listing, got %s", listing.Status)
	}
	if listing.Currency != "USD" {
		t.Fatalf("expected default currency, got %s", listing.Currency)
	}
}

func TestVisibilityToggleOwnerOnly(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	listing, err := service.Create(ctx, "seller_1", ports.CreateListingInput{
		Title: "Logo pack", Price: 100, Activate: true,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := service.Deactivate(ctx, ports.Actor{UserID: "seller_2"}, listing.ListingID); err != domainerrors.ErrNotListingOwner {
		t.Fatalf("expected owner check failure, got %v", err)
	}

	toggled, err := service.Deactivate(ctx, ports.Actor{UserID: "seller_1"}, listing.ListingID)
	if err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if toggled.Status != entities.ListingStatusInactive {
		t.Fatalf("expected inactive, got %s", toggled.Status)
	}

	// Admin override mirrors the guard's admin pass.
	reactivated, err := service.Activate(ctx, ports.Actor{UserID: "admin_1", Admin: true}, listing.ListingID)
	if err != nil {
		t.Fatalf("admin activate failed: %v", err)
	}
	if reactivated.Status != entities.ListingStatusActive {
		t.Fatalf("expected active, got %s", reactivated.Status)
	}
}

func TestSoldIsTerminal(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	listing, err := service.Create(ctx, "seller_1", ports.CreateListingInput{
		Title: "Logo pack", Price: 100, Activate: true,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := service.MarkSold(ctx, listing.ListingID); err != nil {
		t.Fatalf("mark sold failed: %v", err)
	}

	actor := ports.Actor{UserID: "seller_1"}
	if _, err := service.Activate(ctx, actor, listing.ListingID); err != domainerrors.ErrListingSold {
		t.Fatalf("expected sold conflict on activate, got %v", err)
	}
	if _, err := service.Deactivate(ctx, actor, listing.ListingID); err != domainerrors.ErrListingSold {
		t.Fatalf("expected sold conflict on deactivate, got %v", err)
	}
	if _, err := service.Update(ctx, actor, listing.ListingID, ports.UpdateListingInput{Price: 200}); err != domainerrors.ErrListingSold {
		t.Fatalf("expected sold conflict on update, got %v", err)
	}

	// A second MarkSold races against the terminal state and must lose.
	if err := service.MarkSold(ctx, listing.ListingID); err != domainerrors.ErrStatusConflict {
		t.Fatalf("expected status conflict on double sale, got %v", err)
	}
}
