package errors

import "errors"

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrInvalidListing  = errors.New("listing input is invalid")
	ErrNotListingOwner = errors.New("caller does not own the listing")
	ErrListingSold     = errors.New("listing is sold and no longer mutable")
	ErrStatusConflict  = errors.New("listing status changed concurrently")
)
