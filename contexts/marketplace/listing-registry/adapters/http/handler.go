package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"bazaar/contexts/marketplace/listing-registry/application"
	"bazaar/contexts/marketplace/listing-registry/domain/entities"
	"bazaar/contexts/marketplace/listing-registry/ports"
	httptransport "bazaar/contexts/marketplace/listing-registry/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CreateListingHandler(
	ctx context.Context,
	sellerID string,
	req httptransport.CreateListingRequest,
) (httptransport.ListingResponse, error) {
	listing, err := h.Service.Create(ctx, sellerID, ports.CreateListingInput{
		Title:    req.Title,
		Type:     req.Type,
		Price:    req.Price,
		Currency: req.Currency,
		Activate: req.Activate,
	})
	if err != nil {
		return httptransport.ListingResponse{}, err
	}
	return httptransport.ListingResponse{Status: "success", Data: toDTO(listing)}, nil
}

func (h Handler) GetListingHandler(ctx context.Context, listingID string) (httptransport.ListingResponse, error) {
	listing, err := h.Service.Get(ctx, listingID)
	if err != nil {
		return httptransport.ListingResponse{}, err
	}
	return httptransport.ListingResponse{Status: "success", Data: toDTO(listing)}, nil
}

func (h Handler) ListSellerListingsHandler(
	ctx context.Context,
	sellerID string,
	limit int,
	offset int,
) (httptransport.ListingListResponse, error) {
	items, err := h.Service.ListBySeller(ctx, sellerID, limit, offset)
	if err != nil {
		return httptransport.ListingListResponse{}, err
	}
	resp := httptransport.ListingListResponse{
		Status: "success",
		Data:   make([]httptransport.ListingDTO, 0, len(items)),
	}
	for _, item := range items {
		resp.Data = append(resp.Data, toDTO(item))
	}
	return resp, nil
}

func (h Handler) UpdateListingHandler(
	ctx context.Context,
	actor ports.Actor,
	listingID string,
	req httptransport.UpdateListingRequest,
) (httptransport.ListingResponse, error) {
	listing, err := h.Service.Update(ctx, actor, listingID, ports.UpdateListingInput{
		Title: req.Title,
		Price: req.Price,
	})
	if err != nil {
		return httptransport.ListingResponse{}, err
	}
	return httptransport.ListingResponse{Status: "success", Data: toDTO(listing)}, nil
}

func (h Handler) ActivateListingHandler(
	ctx context.Context,
	actor ports.Actor,
	listingID string,
) (httptransport.ListingResponse, error) {
	listing, err := h.Service.Activate(ctx, actor, listingID)
	if err != nil {
		return httptransport.ListingResponse{}, err
	}
	return httptransport.ListingResponse{Status: "success", Data: toDTO(listing)}, nil
}

func (h Handler) DeactivateListingHandler(
	ctx context.Context,
	actor ports.Actor,
	listingID string,
) (httptransport.ListingResponse, error) {
	listing, err := h.Service.Deactivate(ctx, actor, listingID)
	if err != nil {
		return httptransport.ListingResponse{}, err
	}
	return httptransport.ListingResponse{Status: "success", Data: toDTO(listing)}, nil
}

func toDTO(listing entities.Listing) httptransport.ListingDTO {
	return httptransport.ListingDTO{
		ListingID: listing.ListingID,
		SellerID:  listing.SellerID,
		Title:     listing.Title,
		Type:      listing.Type,
		Price:     listing.Price,
		Currency:  listing.Currency,
		Status:    string(listing.Status),
		CreatedAt: listing.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: listing.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
