package httpserver

import (
	"encoding/json"
	"net/http"

	listinghttp "bazaar/contexts/marketplace/listing-registry/transport/http"
)

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	caller, err := s.requireSeller(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	var req listinghttp.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeListingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.listings.Handler.CreateListingHandler(r.Context(), caller.UserID, req)
	if err != nil {
		writeListingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	resp, err := s.listings.Handler.GetListingHandler(r.Context(), r.PathValue("listing_id"))
	if err != nil {
		writeListingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateListing(w http.ResponseWriter, r *http.Request) {
	caller, err := s.authenticate(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	var req listinghttp.UpdateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeListingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.listings.Handler.UpdateListingHandler(
		r.Context(),
		listingActor(caller),
		r.PathValue("listing_id"),
		req,
	)
	if err != nil {
		writeListingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleActivateListing(w http.ResponseWriter, r *http.Request) {
	caller, err := s.authenticate(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	resp, err := s.listings.Handler.ActivateListingHandler(r.Context(), listingActor(caller), r.PathValue("listing_id"))
	if err != nil {
		writeListingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeactivateListing(w http.ResponseWriter, r *http.Request) {
	caller, err := s.authenticate(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	resp, err := s.listings.Handler.DeactivateListingHandler(r.Context(), listingActor(caller), r.PathValue("listing_id"))
	if err != nil {
		writeListingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListMyListings(w http.ResponseWriter, r *http.Request) {
	caller, err := s.requireSeller(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	limit, offset, err := parsePage(r)
	if err != nil {
		writeListingError(w, http.StatusBadRequest, "invalid_page", err.Error())
		return
	}
	resp, err := s.listings.Handler.ListSellerListingsHandler(r.Context(), caller.UserID, limit, offset)
	if err != nil {
		writeListingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
