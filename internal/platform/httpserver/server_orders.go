package httpserver

import (
	"encoding/json"
	"net/http"

	orderhttp "bazaar/contexts/marketplace/escrow-order/transport/http"
)

func (s *Server) handleBuyNow(w http.ResponseWriter, r *http.Request) {
	caller, err := s.requireBuyer(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	req := orderhttp.BuyNowRequest{ListingID: r.PathValue("listing_id")}
	resp, err := s.orders.Handler.BuyNowHandler(r.Context(), caller.UserID, req)
	if err != nil {
		writeOrderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// handleConfirmPayment is the gateway callback. It is unauthenticated and
// keyed solely by the payment reference minted at intent creation.
func (s *Server) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req orderhttp.ConfirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOrderError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.orders.Handler.ConfirmPaymentHandler(r.Context(), req)
	if err != nil {
		writeOrderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	caller, err := s.authenticate(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	resp, err := s.orders.Handler.GetOrderHandler(r.Context(), orderActor(caller), r.PathValue("order_id"))
	if err != nil {
		writeOrderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	caller, err := s.authenticate(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	limit, offset, err := parsePage(r)
	if err != nil {
		writeOrderError(w, http.StatusBadRequest, "invalid_page", err.Error())
		return
	}
	role := r.URL.Query().Get("role")
	if role == "" {
		role = "buyer"
	}

	resp, err := s.orders.Handler.ListOrdersHandler(r.Context(), orderActor(caller), role, limit, offset)
	if err != nil {
		writeOrderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartWork(w http.ResponseWriter, r *http.Request) {
	caller, err := s.authenticate(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	resp, err := s.orders.Handler.StartWorkHandler(r.Context(), orderActor(caller), r.PathValue("order_id"))
	if err != nil {
		writeOrderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeliverOrder(w http.ResponseWriter, r *http.Request) {
	caller, err := s.authenticate(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	var req orderhttp.DeliverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOrderError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.orders.Handler.DeliverHandler(r.Context(), orderActor(caller), r.PathValue("order_id"), req)
	if err != nil {
		writeOrderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRequestRevision(w http.ResponseWriter, r *http.Request) {
	caller, err := s.authenticate(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	req := orderhttp.RevisionRequest{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeOrderError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
			return
		}
	}

	resp, err := s.orders.Handler.RequestRevisionHandler(r.Context(), orderActor(caller), r.PathValue("order_id"), req)
	if err != nil {
		writeOrderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAcceptDelivery(w http.ResponseWriter, r *http.Request) {
	caller, err := s.authenticate(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	resp, err := s.orders.Handler.AcceptDeliveryHandler(r.Context(), orderActor(caller), r.PathValue("order_id"))
	if err != nil {
		writeOrderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRaiseDispute(w http.ResponseWriter, r *http.Request) {
	caller, err := s.authenticate(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	req := orderhttp.DisputeRequest{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeOrderError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
			return
		}
	}

	resp, err := s.orders.Handler.RaiseDisputeHandler(r.Context(), orderActor(caller), r.PathValue("order_id"), req)
	if err != nil {
		writeOrderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolveDispute(w http.ResponseWriter, r *http.Request) {
	caller, err := s.authenticate(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	var req orderhttp.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOrderError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.orders.Handler.ResolveDisputeHandler(r.Context(), orderActor(caller), r.PathValue("order_id"), req)
	if err != nil {
		writeOrderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
