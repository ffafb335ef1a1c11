package httpserver

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sellerledger "bazaar/contexts/finance-core/seller-ledger"
	accessguard "bazaar/contexts/identity-access/access-guard"
	guardports "bazaar/contexts/identity-access/access-guard/ports"
	authcontext "bazaar/contexts/identity-access/auth-context"
	escroworder "bazaar/contexts/marketplace/escrow-order"
	listingregistry "bazaar/contexts/marketplace/listing-registry"
	offerengine "bazaar/contexts/marketplace/offer-engine"
	"bazaar/internal/platform/payments"
)

func newTestServer() *Server {
	server, _ := newTestServerWithGateway()
	return server
}

func newTestServerWithGateway() (*Server, *payments.Simulator) {
	psp := payments.NewSimulator(slog.Default())
	return New(
		authcontext.NewModule(authcontext.Dependencies{
			Secret:   "test-signing-secret",
			Issuer:   "bazaar",
			Audience: "bazaar-api",
		}),
		accessguard.NewInMemoryModule(slog.Default()),
		listingregistry.NewInMemoryModule(slog.Default()),
		offerengine.NewInMemoryModule(nil, nil, slog.Default()),
		escroworder.NewInMemoryModule(nil, psp, nil, nil, nil, slog.Default()),
		sellerledger.NewInMemoryModule(psp, slog.Default()),
		slog.Default(),
		":0",
	), psp
}

func bearerFor(t *testing.T, server *Server, userID string, role string) string {
	t.Helper()
	token, err := server.auth.Resolver.Issue(userID, role, userID+"@example.com", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}

func seedIdentity(server *Server, userID string, role guardports.Role, userType guardports.UserType) {
	server.guard.Store.PutIdentity(guardports.Identity{
		UserID:   userID,
		Role:     role,
		UserType: userType,
		Active:   true,
	})
}

func TestCreateListingRequiresBearerToken(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"title":"Logo pack","price":10000,"currency":"usd"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/listings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateListingRejectsMalformedToken(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"title":"Logo pack","price":10000,"currency":"usd"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/listings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer not-a-jwt")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSellerCreatesListingAndAnyoneReadsIt(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"title":"Logo pack","type":"template","price":10000,"currency":"usd","activate":true}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/listings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, server, "seller-1", "seller"))

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	var created struct {
		Data struct {
			ListingID string `json:"listing_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.Data.ListingID == "" {
		t.Fatalf("expected listing id in response, got %s", rr.Body.String())
	}

	// The public read needs no credential at all.
	readReq := httptest.NewRequest(http.MethodGet, "/v1/listings/"+created.Data.ListingID, nil)
	readRR := httptest.NewRecorder()
	server.mux.ServeHTTP(readRR, readReq)
	if readRR.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", readRR.Code, readRR.Body.String())
	}
}

func TestBuyerOnlyAccountCannotCreateListing(t *testing.T) {
	server := newTestServer()
	seedIdentity(server, "buyer-1", guardports.RoleUser, guardports.UserTypeBuyer)

	body := []byte(`{"title":"Logo pack","price":10000,"currency":"usd"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/listings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, server, "buyer-1", "user"))

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestMyListingsRequiresAuth(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/sellers/me/listings", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}
