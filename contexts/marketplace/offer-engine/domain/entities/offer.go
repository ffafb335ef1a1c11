package entities

import (
	"strings"
	"time"

	domainerrors "bazaar/contexts/marketplace/offer-engine/domain/errors"
)

type OfferStatus string

const (
	OfferStatusPending   OfferStatus = "pending"
	OfferStatusCountered OfferStatus = "countered"
	OfferStatusAccepted  OfferStatus = "accepted"
	OfferStatusRejected  OfferStatus = "rejected"
	OfferStatusExpired   OfferStatus = "expired"
	OfferStatusWithdrawn OfferStatus = "withdrawn"
)

type Offer struct {
	OfferID       string
	ListingID     string
	BuyerID       string
	SellerID      string
	Amount        int64
	CounterAmount int64
	Message       string
	Status        OfferStatus
	ExpiresAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewOffer(
	offerID string,
	listingID string,
	buyerID string,
	sellerID string,
	amount int64,
	message string,
	createdAt time.Time,
	expiresAt time.Time,
) (Offer, error) {
	if strings.TrimSpace(offerID) == "" ||
		strings.TrimSpace(listingID) == "" ||
		strings.TrimSpace(buyerID) == "" ||
		strings.TrimSpace(sellerID) == "" {
		return Offer{}, domainerrors.ErrInvalidOffer
	}
	if amount <= 0 {
		return Offer{}, domainerrors.ErrInvalidOffer
	}
	if !expiresAt.After(createdAt) {
		return Offer{}, domainerrors.ErrInvalidOffer
	}

	return Offer{
		OfferID:   offerID,
		ListingID: listingID,
		BuyerID:   buyerID,
		SellerID:  sellerID,
		Amount:    amount,
		Message:   strings.TrimSpace(message),
		Status:    OfferStatusPending,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: createdAt.UTC(),
		UpdatedAt: createdAt.UTC(),
	}, nil
}

// Open reports whether the offer still participates in negotiation.
func (o Offer) Open() bool {
	return o.Status == OfferStatusPending || o.Status == OfferStatusCountered
}

// EffectiveStatus reconciles expiry lazily: an open offer past expiresAt
// reads as expired even before the sweep persists it.
func (o Offer) EffectiveStatus(now time.Time) OfferStatus {
	if o.Open() && now.UTC().After(o.ExpiresAt) {
		return OfferStatusExpired
	}
	return o.Status
}

// EffectiveAmount is the amount an acceptance settles at: the counter
// value once a counter was made, the original amount otherwise.
func (o Offer) EffectiveAmount() int64 {
	if o.CounterAmount > 0 {
		return o.CounterAmount
	}
	return o.Amount
}
