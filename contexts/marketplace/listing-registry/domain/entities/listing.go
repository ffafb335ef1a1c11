package entities

import (
	"strings"
	"time"

	domainerrors "bazaar/contexts/marketplace/listing-registry/domain/errors"
)

type ListingStatus string

const (
	ListingStatusDraft    ListingStatus = "draft"
	ListingStatusActive   ListingStatus = "active"
	ListingStatusInactive ListingStatus = "inactive"
	ListingStatusSold     ListingStatus = "sold"
)

type Listing struct {
	ListingID string
	SellerID  string
	Title     string
	Type      string
	Price     int64
	Currency  string
	Status    ListingStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewListing(
	listingID string,
	sellerID string,
	title string,
	listingType string,
	price int64,
	currency string,
	status ListingStatus,
	createdAt time.Time,
) (Listing, error) {
	if strings.TrimSpace(listingID) == "" ||
		strings.TrimSpace(sellerID) == "" ||
		strings.TrimSpace(title) == "" {
		return Listing{}, domainerrors.ErrInvalidListing
	}
	if price <= 0 {
		return Listing{}, domainerrors.ErrInvalidListing
	}
	if status != ListingStatusDraft && status != ListingStatusActive {
		return Listing{}, domainerrors.ErrInvalidListing
	}
	if strings.TrimSpace(currency) == "" {
		currency = "USD"
	}

	return Listing{
		ListingID: listingID,
		SellerID:  sellerID,
		Title:     strings.TrimSpace(title),
		Type:      strings.TrimSpace(listingType),
		Price:     price,
		Currency:  strings.ToUpper(strings.TrimSpace(currency)),
		Status:    status,
		CreatedAt: createdAt.UTC(),
		UpdatedAt: createdAt.UTC(),
	}, nil
}

// Purchasable reports whether offers and direct purchases are accepted.
func (l Listing) Purchasable() bool {
	return l.Status == ListingStatusActive
}

// Sold is terminal; no visibility toggles or edits past it.
func (l Listing) Terminal() bool {
	return l.Status == ListingStatusSold
}
