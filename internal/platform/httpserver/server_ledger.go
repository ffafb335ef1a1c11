package httpserver

import (
	"encoding/json"
	"net/http"

	ledgerhttp "bazaar/contexts/finance-core/seller-ledger/transport/http"
)

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	caller, err := s.requireSeller(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	resp, err := s.ledger.Handler.BalanceHandler(r.Context(), caller.UserID)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	caller, err := s.requireSeller(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	var req ledgerhttp.WithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.ledger.Handler.RequestWithdrawalHandler(r.Context(), caller.UserID, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListWithdrawals(w http.ResponseWriter, r *http.Request) {
	caller, err := s.requireSeller(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	limit, offset, err := parsePage(r)
	if err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_page", err.Error())
		return
	}
	resp, err := s.ledger.Handler.ListWithdrawalsHandler(r.Context(), caller.UserID, limit, offset)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
