package errors

import (
	"errors"
	"fmt"
)

var (
	ErrOfferNotFound      = errors.New("offer not found")
	ErrInvalidOffer       = errors.New("offer input is invalid")
	ErrListingUnavailable = errors.New("listing does not accept offers")
	ErrOwnListing         = errors.New("sellers cannot offer on their own listing")
	ErrOpenOfferExists    = errors.New("an open offer already exists for this listing")
	ErrOfferExpired       = errors.New("offer has expired")
	ErrNotOfferBuyer      = errors.New("caller is not the offer buyer")
	ErrNotListingSeller   = errors.New("caller is not the listing seller")
	ErrStatusConflict     = errors.New("offer status changed concurrently")
)

// CeilingError rejects offers far above the listing price and carries the
// computed ceiling so the caller can adjust.
type CeilingError struct {
	Ceiling int64
}

func (e *CeilingError) Error() string {
	return fmt.Sprintf("offer amount exceeds the allowed ceiling of %d", e.Ceiling)
}

func (e *CeilingError) Unwrap() error {
	return ErrInvalidOffer
}
