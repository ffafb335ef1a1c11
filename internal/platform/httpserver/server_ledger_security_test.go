package httpserver

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	guardports "bazaar/contexts/identity-access/access-guard/ports"
)

func TestBalanceRequiresAuth(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/sellers/me/balance", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestBalanceRefusesBuyerOnlyAccount(t *testing.T) {
	server := newTestServer()
	seedIdentity(server, "buyer-1", guardports.RoleUser, guardports.UserTypeBuyer)

	req := httptest.NewRequest(http.MethodGet, "/v1/sellers/me/balance", nil)
	req.Header.Set("Authorization", bearerFor(t, server, "buyer-1", "user"))

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestBalanceStartsEmptyForSeller(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/sellers/me/balance", nil)
	req.Header.Set("Authorization", bearerFor(t, server, "seller-1", "seller"))

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestWithdrawalBelowMinimumRejected(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"amount":100}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/sellers/me/withdrawals", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, server, "seller-1", "seller"))

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestWithdrawalWithoutPayoutAccountBadRequest(t *testing.T) {
	server, psp := newTestServerWithGateway()
	psp.SetPayoutCapable("seller-1", false)

	body := []byte(`{"amount":1000}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/sellers/me/withdrawals", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, server, "seller-1", "seller"))

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestWithdrawalWithoutFundsConflicts(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"amount":1000}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/sellers/me/withdrawals", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, server, "seller-1", "seller"))

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
}
