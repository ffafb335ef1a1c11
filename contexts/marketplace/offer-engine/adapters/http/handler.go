package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"bazaar/contexts/marketplace/offer-engine/application/commands"
	"bazaar/contexts/marketplace/offer-engine/application/queries"
	"bazaar/contexts/marketplace/offer-engine/domain/entities"
	"bazaar/contexts/marketplace/offer-engine/ports"
	httptransport "bazaar/contexts/marketplace/offer-engine/transport/http"
)

type Handler struct {
	CreateOffer   commands.CreateOfferUseCase
	AcceptOffer   commands.AcceptOfferUseCase
	RejectOffer   commands.RejectOfferUseCase
	CounterOffer  commands.CounterOfferUseCase
	WithdrawOffer commands.WithdrawOfferUseCase
	GetOffer      queries.GetOfferUseCase
	ListOffers    queries.ListOffersUseCase
	Logger        *slog.Logger
}

func (h Handler) CreateOfferHandler(
	ctx context.Context,
	buyerID string,
	req httptransport.CreateOfferRequest,
) (httptransport.OfferResponse, error) {
	offer, err := h.CreateOffer.Execute(ctx, commands.CreateOfferCommand{
		ListingID: req.ListingID,
		BuyerID:   buyerID,
		Amount:    req.Amount,
		Message:   req.Message,
	})
	if err != nil {
		return httptransport.OfferResponse{}, err
	}
	return httptransport.OfferResponse{Status: "success", Data: toDTO(offer)}, nil
}

func (h Handler) AcceptOfferHandler(
	ctx context.Context,
	actor ports.Actor,
	offerID string,
) (httptransport.AcceptOfferResponse, error) {
	result, err := h.AcceptOffer.Execute(ctx, commands.AcceptOfferCommand{
		OfferID: offerID,
		Actor:   actor,
	})
	if err != nil {
		return httptransport.AcceptOfferResponse{}, err
	}
	return httptransport.AcceptOfferResponse{
		Status: "success",
		Data: httptransport.AcceptOfferData{
			Offer:    toDTO(result.Offer),
			OrderID:  result.Order.OrderID,
			Replayed: result.Replayed,
		},
	}, nil
}

func (h Handler) RejectOfferHandler(
	ctx context.Context,
	actor ports.Actor,
	offerID string,
	req httptransport.RejectOfferRequest,
) (httptransport.OfferResponse, error) {
	offer, err := h.RejectOffer.Execute(ctx, commands.RejectOfferCommand{
		OfferID: offerID,
		Actor:   actor,
		Reason:  req.Reason,
	})
	if err != nil {
		return httptransport.OfferResponse{}, err
	}
	return httptransport.OfferResponse{Status: "success", Data: toDTO(offer)}, nil
}

func (h Handler) CounterOfferHandler(
	ctx context.Context,
	actor ports.Actor,
	offerID string,
	req httptransport.CounterOfferRequest,
) (httptransport.OfferResponse, error) {
	offer, err := h.CounterOffer.Execute(ctx, commands.CounterOfferCommand{
		OfferID:       offerID,
		Actor:         actor,
		CounterAmount: req.CounterAmount,
	})
	if err != nil {
		return httptransport.OfferResponse{}, err
	}
	return httptransport.OfferResponse{Status: "success", Data: toDTO(offer)}, nil
}

func (h Handler) WithdrawOfferHandler(
	ctx context.Context,
	actor ports.Actor,
	offerID string,
) (httptransport.OfferResponse, error) {
	offer, err := h.WithdrawOffer.Execute(ctx, commands.WithdrawOfferCommand{
		OfferID: offerID,
		Actor:   actor,
	})
	if err != nil {
		return httptransport.OfferResponse{}, err
	}
	return httptransport.OfferResponse{Status: "success", Data: toDTO(offer)}, nil
}

func (h Handler) GetOfferHandler(
	ctx context.Context,
	actor ports.Actor,
	offerID string,
) (httptransport.OfferResponse, error) {
	offer, err := h.GetOffer.Execute(ctx, queries.GetOfferQuery{
		OfferID: offerID,
		Actor:   actor,
	})
	if err != nil {
		return httptransport.OfferResponse{}, err
	}
	return httptransport.OfferResponse{Status: "success", Data: toDTO(offer)}, nil
}

func (h Handler) ListOffersHandler(
	ctx context.Context,
	actor ports.Actor,
	role string,
	limit int,
	offset int,
) (httptransport.OfferListResponse, error) {
	items, err := h.ListOffers.Execute(ctx, queries.ListOffersQuery{
		Actor:  actor,
		Role:   role,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return httptransport.OfferListResponse{}, err
	}
	resp := httptransport.OfferListResponse{
		Status: "success",
		Data:   make([]httptransport.OfferDTO, 0, len(items)),
	}
	for _, item := range items {
		resp.Data = append(resp.Data, toDTO(item))
	}
	return resp, nil
}

func toDTO(offer entities.Offer) httptransport.OfferDTO {
	return httptransport.OfferDTO{
		OfferID:       offer.OfferID,
		ListingID:     offer.ListingID,
		BuyerID:       offer.BuyerID,
		SellerID:      offer.SellerID,
		Amount:        offer.Amount,
		CounterAmount: offer.CounterAmount,
		Message:       offer.Message,
		Status:        string(offer.Status),
		ExpiresAt:     offer.ExpiresAt.UTC().Format(time.RFC3339),
		CreatedAt:     offer.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     offer.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
