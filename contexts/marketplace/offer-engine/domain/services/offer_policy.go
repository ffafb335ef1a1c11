package services

import (
	domainerrors "bazaar/contexts/marketplace/offer-engine/domain/errors"
)

// EvaluateOfferEligibility enforces the listing-side rules for a new
// offer: the listing must be purchasable, the buyer must not own it, and
// the amount must stay under the fat-finger ceiling.
func EvaluateOfferEligibility(
	listingSellerID string,
	listingPurchasable bool,
	listingPrice int64,
	buyerID string,
	amount int64,
	ceilingMultiplier int,
) error {
	if listingSellerID == buyerID {
		return domainerrors.ErrOwnListing
	}
	if !listingPurchasable {
		return domainerrors.ErrListingUnavailable
	}

	if ceilingMultiplier <= 0 {
		ceilingMultiplier = 3
	}
	ceiling := listingPrice * int64(ceilingMultiplier)
	if amount > ceiling {
		return &domainerrors.CeilingError{Ceiling: ceiling}
	}
	return nil
}
