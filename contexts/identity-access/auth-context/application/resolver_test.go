package application

import (
	"testing"
	"time"

	domainerrors "bazaar/contexts/identity-access/auth-context/domain/errors"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newResolver(now time.Time) Resolver {
	return Resolver{
		Secret:   []byte("test-secret"),
		Issuer:   "bazaar",
		Audience: "bazaar-api",
		Clock:    fixedClock{now: now},
	}
}

func TestResolveRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	resolver := newResolver(now)

	token, err := resolver.Issue("user_1", "seller", "seller@example.com", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	authCtx, err := resolver.Resolve("Bearer " + token)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if authCtx.UserID != "user_1" {
		t.Fatalf("unexpected user id: %s", authCtx.UserID)
	}
	if authCtx.Role != "seller" {
		t.Fatalf("unexpected role: %s", authCtx.Role)
	}
	if !authCtx.Authenticated() {
		t.Fatal("expected authenticated context")
	}
}

func TestResolveMissingCredential(t *testing.T) {
	resolver := newResolver(time.Now().UTC())

	if _, err := resolver.Resolve(""); err != domainerrors.ErrUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if _, err := resolver.Resolve("Bearer "); err != domainerrors.ErrUnauthenticated {
		t.Fatalf("expected unauthenticated for empty token, got %v", err)
	}
	if _, err := resolver.Resolve("Basic abc"); err != domainerrors.ErrUnauthenticated {
		t.Fatalf("expected unauthenticated for non-bearer scheme, got %v", err)
	}
}

func TestResolveExpiredCredential(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	resolver := newResolver(issuedAt)

	token, err := resolver.Issue("user_2", "buyer", "", time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	late := newResolver(issuedAt.Add(2 * time.Minute))
	if _, err := late.Resolve(token); err != domainerrors.ErrUnauthenticated {
		t.Fatalf("expected unauthenticated for expired token, got %v", err)
	}
}

func TestResolveWrongSecretAndIssuer(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	resolver := newResolver(now)

	token, err := resolver.Issue("user_3", "buyer", "", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	tampered := resolver
	tampered.Secret = []byte("other-secret")
	if _, err := tampered.Resolve(token); err != domainerrors.ErrInvalidCredential {
		t.Fatalf("expected invalid credential for wrong secret, got %v", err)
	}

	wrongIssuer := resolver
	wrongIssuer.Issuer = "someone-else"
	if _, err := wrongIssuer.Resolve(token); err != domainerrors.ErrInvalidCredential {
		t.Fatalf("expected invalid credential for wrong issuer, got %v", err)
	}

	wrongAudience := resolver
	wrongAudience.Audience = "other-api"
	if _, err := wrongAudience.Resolve(token); err != domainerrors.ErrInvalidCredential {
		t.Fatalf("expected invalid credential for wrong audience, got %v", err)
	}
}

func TestResolveOptionalFallsBackToAnonymous(t *testing.T) {
	resolver := newResolver(time.Now().UTC())

	authCtx := resolver.ResolveOptional("garbage")
	if authCtx.Authenticated() {
		t.Fatal("expected anonymous context")
	}
	if !authCtx.Anonymous {
		t.Fatal("expected anonymous flag set")
	}
}
