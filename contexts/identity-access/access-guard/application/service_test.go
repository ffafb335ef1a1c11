package application

import (
	"context"
	"errors"
	"testing"

	"bazaar/contexts/identity-access/access-guard/adapters/memory"
	domainerrors "bazaar/contexts/identity-access/access-guard/domain/errors"
	"bazaar/contexts/identity-access/access-guard/domain/services"
	"bazaar/contexts/identity-access/access-guard/ports"
)

const (
	listingA = "5d1c7a44-3f0f-4f1d-9f4a-111111111111"
	listingB = "5d1c7a44-3f0f-4f1d-9f4a-222222222222"
	listingC = "5d1c7a44-3f0f-4f1d-9f4a-333333333333"
)

func newGuard() (Service, *memory.Store) {
	store := memory.NewStore()
	return Service{
		Tiers:      services.DefaultTiers(),
		Identities: store,
		Resources:  store,
	}, store
}

func TestAuthorizeRoleTiers(t *testing.T) {
	guard, _ := newGuard()

	seller := ports.Caller{UserID: "u1", Role: ports.RoleSeller}
	if err := guard.Authorize(seller, ports.RoleBuyer, ports.RoleSeller); err != nil {
		t.Fatalf("seller should clear buyer/seller tier: %v", err)
	}

	admin := ports.Caller{UserID: "u2", Role: ports.RoleAdmin}
	if err := guard.Authorize(admin, ports.RoleSubadmin); err != nil {
		t.Fatalf("admin should clear subadmin tier: %v", err)
	}

	user := ports.Caller{UserID: "u3", Role: ports.RoleUser}
	if err := guard.Authorize(user, ports.RoleSubadmin); err != domainerrors.ErrForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if err := guard.Authorize(ports.Caller{}, ports.RoleUser); err != domainerrors.ErrUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestCheckOwnership(t *testing.T) {
	guard, store := newGuard()
	store.PutResource("listing", listingA, "seller_1")
	ctx := context.Background()

	owner := ports.Caller{UserID: "seller_1", Role: ports.RoleSeller}
	if err := guard.CheckOwnership(ctx, owner, "listing", listingA); err != nil {
		t.Fatalf("owner should pass: %v", err)
	}

	admin := ports.Caller{UserID: "admin_1", Role: ports.RoleAdmin}
	if err := guard.CheckOwnership(ctx, admin, "listing", listingA); err != nil {
		t.Fatalf("admin should pass: %v", err)
	}

	stranger := ports.Caller{UserID: "seller_2", Role: ports.RoleSeller}
	err := guard.CheckOwnership(ctx, stranger, "listing", listingA)
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}

	if err := guard.CheckOwnership(ctx, owner, "listing", listingB); err != domainerrors.ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := guard.CheckOwnership(ctx, owner, "listing", "not a uuid"); err != domainerrors.ErrInvalidResourceID {
		t.Fatalf("expected invalid resource id, got %v", err)
	}
}

func TestCheckOwnershipBatchReportsFullMismatchSet(t *testing.T) {
	guard, store := newGuard()
	store.PutResource("listing", listingA, "seller_1")
	store.PutResource("listing", listingB, "seller_2")
	store.PutResource("listing", listingC, "seller_2")
	ctx := context.Background()

	caller := ports.Caller{UserID: "seller_1", Role: ports.RoleSeller}
	err := guard.CheckOwnershipBatch(ctx, caller, "listing", []string{listingA, listingB, listingC})

	var ownershipErr *domainerrors.OwnershipError
	if !errors.As(err, &ownershipErr) {
		t.Fatalf("expected ownership error, got %v", err)
	}
	if len(ownershipErr.Unowned) != 2 {
		t.Fatalf("expected both unowned ids reported, got %v", ownershipErr.Unowned)
	}

	admin := ports.Caller{UserID: "admin_1", Role: ports.RoleAdmin}
	if err := guard.CheckOwnershipBatch(ctx, admin, "listing", []string{listingA, listingB}); err != nil {
		t.Fatalf("admin batch should pass: %v", err)
	}
}

func TestRequireSellerTrustsCredentialRole(t *testing.T) {
	guard, _ := newGuard()
	ctx := context.Background()

	// No identity stored: the credential role alone must decide.
	caller := ports.Caller{UserID: "seller_9", Role: ports.RoleSeller}
	if err := guard.RequireSeller(ctx, caller); err != nil {
		t.Fatalf("credential seller role should pass without store hit: %v", err)
	}
}

func TestRequireSellerFallsBackToStoredUserType(t *testing.T) {
	guard, store := newGuard()
	ctx := context.Background()

	store.PutIdentity(ports.Identity{
		UserID: "u_both", Role: ports.RoleUser, UserType: ports.UserTypeBoth, Active: true,
	})
	if err := guard.RequireSeller(ctx, ports.Caller{UserID: "u_both", Role: ports.RoleUser}); err != nil {
		t.Fatalf("userType both should derive seller capability: %v", err)
	}

	store.PutIdentity(ports.Identity{
		UserID: "u_buyer", Role: ports.RoleUser, UserType: ports.UserTypeBuyer, Active: true,
	})
	if err := guard.RequireSeller(ctx, ports.Caller{UserID: "u_buyer", Role: ports.RoleUser}); err != domainerrors.ErrForbidden {
		t.Fatalf("expected forbidden for buyer-only account, got %v", err)
	}

	store.PutIdentity(ports.Identity{
		UserID: "u_off", Role: ports.RoleUser, UserType: ports.UserTypeSeller, Active: false,
	})
	if err := guard.RequireSeller(ctx, ports.Caller{UserID: "u_off", Role: ports.RoleUser}); err != domainerrors.ErrAccountDeactivated {
		t.Fatalf("expected deactivated, got %v", err)
	}
}

func TestRequireHypeModeAlwaysConsultsStore(t *testing.T) {
	guard, store := newGuard()
	ctx := context.Background()

	store.PutIdentity(ports.Identity{
		UserID: "u_hype", Role: ports.RoleSeller, UserType: ports.UserTypeSeller, HypeMode: true, Active: true,
	})
	if err := guard.RequireHypeMode(ctx, ports.Caller{UserID: "u_hype", Role: ports.RoleSeller}); err != nil {
		t.Fatalf("hype mode account should pass: %v", err)
	}

	store.PutIdentity(ports.Identity{
		UserID: "u_plain", Role: ports.RoleSeller, UserType: ports.UserTypeSeller, Active: true,
	})
	if err := guard.RequireHypeMode(ctx, ports.Caller{UserID: "u_plain", Role: ports.RoleSeller}); err != domainerrors.ErrForbidden {
		t.Fatalf("expected forbidden without hype mode, got %v", err)
	}
}

func TestGuardChainStopsOnFirstFailure(t *testing.T) {
	guard, store := newGuard()
	store.PutResource("listing", listingA, "seller_1")
	ctx := context.Background()

	chain := Chain(
		guard.RoleStep(ports.RoleBuyer, ports.RoleSeller),
		guard.OwnershipStep("listing", func(context.Context) string { return listingA }),
	)

	if _, err := chain(ctx, ports.Caller{UserID: "seller_1", Role: ports.RoleSeller}); err != nil {
		t.Fatalf("owner chain should pass: %v", err)
	}

	_, err := chain(ctx, ports.Caller{UserID: "seller_2", Role: ports.RoleSeller})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden from ownership step, got %v", err)
	}

	_, err = chain(ctx, ports.Caller{})
	if err != domainerrors.ErrUnauthenticated {
		t.Fatalf("expected unauthenticated from role step, got %v", err)
	}
}
