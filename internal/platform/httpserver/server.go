package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	sellerledger "bazaar/contexts/finance-core/seller-ledger"
	ledgererrors "bazaar/contexts/finance-core/seller-ledger/domain/errors"
	ledgerhttp "bazaar/contexts/finance-core/seller-ledger/transport/http"
	accessguard "bazaar/contexts/identity-access/access-guard"
	guarderrors "bazaar/contexts/identity-access/access-guard/domain/errors"
	guardports "bazaar/contexts/identity-access/access-guard/ports"
	authcontext "bazaar/contexts/identity-access/auth-context"
	autherrors "bazaar/contexts/identity-access/auth-context/domain/errors"
	escroworder "bazaar/contexts/marketplace/escrow-order"
	ordererrors "bazaar/contexts/marketplace/escrow-order/domain/errors"
	orderports "bazaar/contexts/marketplace/escrow-order/ports"
	orderhttp "bazaar/contexts/marketplace/escrow-order/transport/http"
	listingregistry "bazaar/contexts/marketplace/listing-registry"
	listingerrors "bazaar/contexts/marketplace/listing-registry/domain/errors"
	listingports "bazaar/contexts/marketplace/listing-registry/ports"
	listinghttp "bazaar/contexts/marketplace/listing-registry/transport/http"
	offerengine "bazaar/contexts/marketplace/offer-engine"
	offererrors "bazaar/contexts/marketplace/offer-engine/domain/errors"
	offerports "bazaar/contexts/marketplace/offer-engine/ports"
	offerhttp "bazaar/contexts/marketplace/offer-engine/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	auth     authcontext.Module
	guard    accessguard.Module
	listings listingregistry.Module
	offers   offerengine.Module
	orders   escroworder.Module
	ledger   sellerledger.Module
}

func New(
	auth authcontext.Module,
	guard accessguard.Module,
	listings listingregistry.Module,
	offers offerengine.Module,
	orders escroworder.Module,
	ledger sellerledger.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		auth:     auth,
		guard:    guard,
		listings: listings,
		offers:   offers,
		orders:   orders,
		ledger:   ledger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/listings", s.handleCreateListing)
	s.mux.HandleFunc("GET /v1/listings/{listing_id}", s.handleGetListing)
	s.mux.HandleFunc("PATCH /v1/listings/{listing_id}", s.handleUpdateListing)
	s.mux.HandleFunc("POST /v1/listings/{listing_id}/activate", s.handleActivateListing)
	s.mux.HandleFunc("POST /v1/listings/{listing_id}/deactivate", s.handleDeactivateListing)
	s.mux.HandleFunc("GET /v1/sellers/me/listings", s.handleListMyListings)

	s.mux.HandleFunc("POST /v1/listings/{listing_id}/offers", s.handleCreateOffer)
	s.mux.HandleFunc("GET /v1/offers", s.handleListOffers)
	s.mux.HandleFunc("GET /v1/offers/{offer_id}", s.handleGetOffer)
	s.mux.HandleFunc("POST /v1/offers/{offer_id}/accept", s.handleAcceptOffer)
	s.mux.HandleFunc("POST /v1/offers/{offer_id}/reject", s.handleRejectOffer)
	s.mux.HandleFunc("POST /v1/offers/{offer_id}/counter", s.handleCounterOffer)
	s.mux.HandleFunc("POST /v1/offers/{offer_id}/withdraw", s.handleWithdrawOffer)

	s.mux.HandleFunc("POST /v1/listings/{listing_id}/buy", s.handleBuyNow)
	s.mux.HandleFunc("POST /v1/payments/confirm", s.handleConfirmPayment)
	s.mux.HandleFunc("GET /v1/orders", s.handleListOrders)
	s.mux.HandleFunc("GET /v1/orders/{order_id}", s.handleGetOrder)
	s.mux.HandleFunc("POST /v1/orders/{order_id}/start", s.handleStartWork)
	s.mux.HandleFunc("POST /v1/orders/{order_id}/deliver", s.handleDeliverOrder)
	s.mux.HandleFunc("POST /v1/orders/{order_id}/revision", s.handleRequestRevision)
	s.mux.HandleFunc("POST /v1/orders/{order_id}/accept", s.handleAcceptDelivery)
	s.mux.HandleFunc("POST /v1/orders/{order_id}/dispute", s.handleRaiseDispute)
	s.mux.HandleFunc("POST /v1/orders/{order_id}/resolve", s.handleResolveDispute)

	s.mux.HandleFunc("GET /v1/sellers/me/balance", s.handleGetBalance)
	s.mux.HandleFunc("POST /v1/sellers/me/withdrawals", s.handleRequestWithdrawal)
	s.mux.HandleFunc("GET /v1/sellers/me/withdrawals", s.handleListWithdrawals)
}

// authenticate resolves the bearer credential into the guard's caller
// shape. Every route except the payment callback goes through here.
func (s *Server) authenticate(r *http.Request) (guardports.Caller, error) {
	authCtx, err := s.auth.Resolver.Resolve(r.Header.Get("Authorization"))
	if err != nil {
		return guardports.Caller{}, err
	}
	return guardports.Caller{
		UserID: authCtx.UserID,
		Role:   guardports.Role(authCtx.Role),
	}, nil
}

func (s *Server) requireSeller(r *http.Request) (guardports.Caller, error) {
	caller, err := s.authenticate(r)
	if err != nil {
		return guardports.Caller{}, err
	}
	if err := s.guard.Service.RequireSeller(r.Context(), caller); err != nil {
		return guardports.Caller{}, err
	}
	return caller, nil
}

func (s *Server) requireBuyer(r *http.Request) (guardports.Caller, error) {
	caller, err := s.authenticate(r)
	if err != nil {
		return guardports.Caller{}, err
	}
	if err := s.guard.Service.RequireBuyer(r.Context(), caller); err != nil {
		return guardports.Caller{}, err
	}
	return caller, nil
}

func isAdmin(caller guardports.Caller) bool {
	return caller.Role == guardports.RoleAdmin
}

func listingActor(caller guardports.Caller) listingports.Actor {
	return listingports.Actor{UserID: caller.UserID, Admin: isAdmin(caller)}
}

func offerActor(caller guardports.Caller) offerports.Actor {
	return offerports.Actor{UserID: caller.UserID, Admin: isAdmin(caller)}
}

func orderActor(caller guardports.Caller) orderports.Actor {
	return orderports.Actor{UserID: caller.UserID, Admin: isAdmin(caller)}
}

func parsePage(r *http.Request) (limit int, offset int, err error) {
	query := r.URL.Query()
	if raw := query.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, errors.New("limit must be an integer")
		}
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, errors.New("offset must be an integer")
		}
	}
	return limit, offset, nil
}

func writeAuthError(w http.ResponseWriter, err error) {
	var ownership *guarderrors.OwnershipError
	switch {
	case errors.Is(err, autherrors.ErrUnauthenticated),
		errors.Is(err, autherrors.ErrInvalidCredential),
		errors.Is(err, guarderrors.ErrUnauthenticated):
		writeListingError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	case errors.Is(err, guarderrors.ErrAccountDeactivated):
		writeListingError(w, http.StatusForbidden, "account_deactivated", err.Error())
	case errors.As(err, &ownership):
		writeListingError(w, http.StatusForbidden, "not_resource_owner", err.Error())
	case errors.Is(err, guarderrors.ErrForbidden):
		writeListingError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, guarderrors.ErrInvalidResourceID):
		writeListingError(w, http.StatusBadRequest, "invalid_resource_id", err.Error())
	case errors.Is(err, guarderrors.ErrNotFound):
		writeListingError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeListingError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeListingDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, listingerrors.ErrListingNotFound):
		writeListingError(w, http.StatusNotFound, "listing_not_found", err.Error())
	case errors.Is(err, listingerrors.ErrInvalidListing):
		writeListingError(w, http.StatusBadRequest, "invalid_listing", err.Error())
	case errors.Is(err, listingerrors.ErrNotListingOwner):
		writeListingError(w, http.StatusForbidden, "not_listing_owner", err.Error())
	case errors.Is(err, listingerrors.ErrListingSold),
		errors.Is(err, listingerrors.ErrStatusConflict):
		writeListingError(w, http.StatusConflict, "listing_conflict", err.Error())
	default:
		writeListingError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeOfferDomainError(w http.ResponseWriter, err error) {
	var ceiling *offererrors.CeilingError
	switch {
	case errors.Is(err, offererrors.ErrOfferNotFound):
		writeOfferError(w, http.StatusNotFound, "offer_not_found", err.Error())
	case errors.As(err, &ceiling):
		writeOfferError(w, http.StatusBadRequest, "offer_above_ceiling", err.Error())
	case errors.Is(err, offererrors.ErrInvalidOffer):
		writeOfferError(w, http.StatusBadRequest, "invalid_offer", err.Error())
	case errors.Is(err, offererrors.ErrListingUnavailable):
		writeOfferError(w, http.StatusConflict, "listing_unavailable", err.Error())
	case errors.Is(err, offererrors.ErrOwnListing):
		writeOfferError(w, http.StatusConflict, "own_listing", err.Error())
	case errors.Is(err, offererrors.ErrOpenOfferExists):
		writeOfferError(w, http.StatusConflict, "open_offer_exists", err.Error())
	case errors.Is(err, offererrors.ErrOfferExpired):
		writeOfferError(w, http.StatusConflict, "offer_expired", err.Error())
	case errors.Is(err, offererrors.ErrStatusConflict):
		writeOfferError(w, http.StatusConflict, "offer_conflict", err.Error())
	case errors.Is(err, offererrors.ErrNotOfferBuyer),
		errors.Is(err, offererrors.ErrNotListingSeller):
		writeOfferError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		writeOfferError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeOrderDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ordererrors.ErrOrderNotFound):
		writeOrderError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, ordererrors.ErrInvalidOrder),
		errors.Is(err, ordererrors.ErrInvalidDelivery),
		errors.Is(err, ordererrors.ErrInvalidResolution):
		writeOrderError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, ordererrors.ErrPaymentUnknown):
		writeOrderError(w, http.StatusNotFound, "payment_unknown", err.Error())
	case errors.Is(err, ordererrors.ErrListingUnavailable),
		errors.Is(err, ordererrors.ErrOwnListing),
		errors.Is(err, ordererrors.ErrDuplicateOrder),
		errors.Is(err, ordererrors.ErrRevisionCapReached),
		errors.Is(err, ordererrors.ErrStatusConflict):
		writeOrderError(w, http.StatusConflict, "order_conflict", err.Error())
	case errors.Is(err, ordererrors.ErrNotOrderBuyer),
		errors.Is(err, ordererrors.ErrNotOrderSeller),
		errors.Is(err, ordererrors.ErrNotAdmin):
		writeOrderError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		writeOrderError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLedgerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgererrors.ErrEntryNotFound),
		errors.Is(err, ledgererrors.ErrWithdrawalNotFound):
		writeLedgerError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidAmount),
		errors.Is(err, ledgererrors.ErrBelowMinimum):
		writeLedgerError(w, http.StatusBadRequest, "invalid_withdrawal", err.Error())
	case errors.Is(err, ledgererrors.ErrInsufficientAvailable),
		errors.Is(err, ledgererrors.ErrAlreadyWithdrawn),
		errors.Is(err, ledgererrors.ErrStatusConflict):
		writeLedgerError(w, http.StatusConflict, "ledger_conflict", err.Error())
	case errors.Is(err, ledgererrors.ErrNotPayoutCapable):
		writeLedgerError(w, http.StatusBadRequest, "not_payout_capable", err.Error())
	default:
		writeLedgerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeListingError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, listinghttp.ErrorResponse{Code: code, Message: message})
}

func writeOfferError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, offerhttp.ErrorResponse{Code: code, Message: message})
}

func writeOrderError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, orderhttp.ErrorResponse{Code: code, Message: message})
}

func writeLedgerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{Code: code, Message: message})
}
