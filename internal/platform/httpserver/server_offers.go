package httpserver

import (
	"encoding/json"
	"net/http"

	offerhttp "bazaar/contexts/marketplace/offer-engine/transport/http"
)

func (s *Server) handleCreateOffer(w http.ResponseWriter, r *http.Request) {
	caller, err := s.requireBuyer(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	var req offerhttp.CreateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOfferError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	req.ListingID = r.PathValue("listing_id")

	resp, err := s.offers.Handler.CreateOfferHandler(r.Context(), caller.UserID, req)
	if err != nil {
		writeOfferDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetOffer(w http.ResponseWriter, r *http.Request) {
	caller, err := s.authenticate(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	resp, err := s.offers.Handler.GetOfferHandler(r.Context(), offerActor(caller), r.PathValue("offer_id"))
	if err != nil {
		writeOfferDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListOffers(w http.ResponseWriter, r *http.Request) {
	caller, err := s.authenticate(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	limit, offset, err := parsePage(r)
	if err != nil {
		writeOfferError(w, http.StatusBadRequest, "invalid_page", err.Error())
		return
	}
	role := r.URL.Query().Get("role")
	if role == "" {
		role = "buyer"
	}

	resp, err := s.offers.Handler.ListOffersHandler(r.Context(), offerActor(caller), role, limit, offset)
	if err != nil {
		writeOfferDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAcceptOffer(w http.ResponseWriter, r *http.Request) {
	caller, err := s.authenticate(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	resp, err := s.offers.Handler.AcceptOfferHandler(r.Context(), offerActor(caller), r.PathValue("offer_id"))
	if err != nil {
		writeOfferDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRejectOffer(w http.ResponseWriter, r *http.Request) {
	caller, err := s.authenticate(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	req := offerhttp.RejectOfferRequest{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeOfferError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
			return
		}
	}

	resp, err := s.offers.Handler.RejectOfferHandler(r.Context(), offerActor(caller), r.PathValue("offer_id"), req)
	if err != nil {
		writeOfferDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCounterOffer(w http.ResponseWriter, r *http.Request) {
	caller, err := s.authenticate(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	var req offerhttp.CounterOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOfferError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.offers.Handler.CounterOfferHandler(r.Context(), offerActor(caller), r.PathValue("offer_id"), req)
	if err != nil {
		writeOfferDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWithdrawOffer(w http.ResponseWriter, r *http.Request) {
	caller, err := s.authenticate(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	resp, err := s.offers.Handler.WithdrawOfferHandler(r.Context(), offerActor(caller), r.PathValue("offer_id"))
	if err != nil {
		writeOfferDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
