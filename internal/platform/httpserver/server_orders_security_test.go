package httpserver

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	guardports "bazaar/contexts/identity-access/access-guard/ports"
)

func TestListOrdersRequiresAuth(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestConfirmPaymentNeedsNoCredential(t *testing.T) {
	// The gateway callback authenticates by payment reference, not by
	// bearer token, so an unknown reference must yield 404 rather than 401.
	server := newTestServer()
	body := []byte(`{"payment_ref":"pi_sim_unknown"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/confirm", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestBuyNowRequiresBuyerCapability(t *testing.T) {
	server := newTestServer()
	seedIdentity(server, "seller-1", guardports.RoleUser, guardports.UserTypeSeller)

	req := httptest.NewRequest(http.MethodPost, "/v1/listings/listing-1/buy", nil)
	req.Header.Set("Authorization", bearerFor(t, server, "seller-1", "user"))

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateOfferRequiresAuth(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"amount":8000}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/listings/listing-1/offers", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestResolveDisputeRefusedForNonAdmin(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"resolution":"refund"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/orders/order-1/resolve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, server, "buyer-1", "buyer"))

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}
