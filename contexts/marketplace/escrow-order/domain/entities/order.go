package entities

import (
	"strings"
	"time"

	domainerrors "bazaar/contexts/marketplace/escrow-order/domain/errors"
)

type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusInProgress     OrderStatus = "in_progress"
	OrderStatusInRevision     OrderStatus = "in_revision"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusDisputed       OrderStatus = "disputed"
	OrderStatusRefunded       OrderStatus = "refunded"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// DefaultMaxRevisions bounds how often a buyer can send a delivery back.
const DefaultMaxRevisions = 2

type Order struct {
	OrderID       string
	OriginOfferID string
	ListingID     string
	BuyerID       string
	SellerID      string
	Amount        int64
	Currency      string
	Status        OrderStatus
	PaymentRef    string
	Revisions     int
	MaxRevisions  int
	PaymentDueAt  time.Time
	DeliveredAt   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewOrder(
	orderID string,
	originOfferID string,
	listingID string,
	buyerID string,
	sellerID string,
	amount int64,
	currency string,
	paymentRef string,
	createdAt time.Time,
	paymentDueAt time.Time,
) (Order, error) {
	if strings.TrimSpace(orderID) == "" ||
		strings.TrimSpace(listingID) == "" ||
		strings.TrimSpace(buyerID) == "" ||
		strings.TrimSpace(sellerID) == "" {
		return Order{}, domainerrors.ErrInvalidOrder
	}
	if amount <= 0 {
		return Order{}, domainerrors.ErrInvalidOrder
	}
	if buyerID == sellerID {
		return Order{}, domainerrors.ErrOwnListing
	}
	if currency == "" {
		currency = "USD"
	}

	return Order{
		OrderID:       orderID,
		OriginOfferID: strings.TrimSpace(originOfferID),
		ListingID:     listingID,
		BuyerID:       buyerID,
		SellerID:      sellerID,
		Amount:        amount,
		Currency:      currency,
		Status:        OrderStatusPendingPayment,
		PaymentRef:    paymentRef,
		MaxRevisions:  DefaultMaxRevisions,
		PaymentDueAt:  paymentDueAt.UTC(),
		CreatedAt:     createdAt.UTC(),
		UpdatedAt:     createdAt.UTC(),
	}, nil
}

// Terminal reports whether the order can never transition again.
func (o Order) Terminal() bool {
	switch o.Status {
	case OrderStatusCompleted, OrderStatusRefunded, OrderStatusCancelled:
		return true
	}
	return false
}

// Disputable covers every pre-completion state, pending_payment included;
// a gateway payment reversal can freeze an order before it ever reaches
// paid.
func (o Order) Disputable() bool {
	switch o.Status {
	case OrderStatusPendingPayment, OrderStatusPaid, OrderStatusInProgress, OrderStatusInRevision, OrderStatusDelivered:
		return true
	}
	return false
}

// Delivery is one submission of work for the order.
type Delivery struct {
	DeliveryID  string
	OrderID     string
	Message     string
	Attachments []string
	SubmittedAt time.Time
}

func NewDelivery(
	deliveryID string,
	orderID string,
	message string,
	attachments []string,
	submittedAt time.Time,
) (Delivery, error) {
	if strings.TrimSpace(message) == "" || len(attachments) == 0 {
		return Delivery{}, domainerrors.ErrInvalidDelivery
	}
	refs := make([]string, 0, len(attachments))
	for _, ref := range attachments {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			return Delivery{}, domainerrors.ErrInvalidDelivery
		}
		refs = append(refs, ref)
	}
	return Delivery{
		DeliveryID:  deliveryID,
		OrderID:     orderID,
		Message:     strings.TrimSpace(message),
		Attachments: refs,
		SubmittedAt: submittedAt.UTC(),
	}, nil
}

// AuditEntry records one state transition for the order trail.
type AuditEntry struct {
	AuditID    string
	OrderID    string
	FromStatus OrderStatus
	ToStatus   OrderStatus
	ActorID    string
	Note       string
	OccurredAt time.Time
}
