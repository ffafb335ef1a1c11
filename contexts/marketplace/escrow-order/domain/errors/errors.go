package errors

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidOrder       = errors.New("order input is invalid")
	ErrListingUnavailable = errors.New("listing cannot be purchased")
	ErrOwnListing         = errors.New("sellers cannot buy their own listing")
	ErrNotOrderBuyer      = errors.New("caller is not the order buyer")
	ErrNotOrderSeller     = errors.New("caller is not the order seller")
	ErrStatusConflict     = errors.New("order status changed concurrently")
	ErrDuplicateOrder     = errors.New("an order already exists for this offer")
	ErrInvalidDelivery    = errors.New("delivery requires a message and at least one attachment")
	ErrRevisionCapReached = errors.New("revision limit reached for this order")
	ErrPaymentUnknown     = errors.New("payment reference is not known")
	ErrNotAdmin           = errors.New("only admins resolve disputes")
	ErrInvalidResolution  = errors.New("resolution must be refund or resume")
)
