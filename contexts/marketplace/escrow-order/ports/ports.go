package ports

import (
	"context"
	"time"

	"bazaar/contexts/marketplace/escrow-order/domain/entities"
	"bazaar/internal/shared/events"
)

// Actor identifies the caller of a mutating operation.
type Actor struct {
	UserID string
	Admin  bool
}

// OrderEvent is the outbound integration payload persisted to outbox
// alongside the transition that produced it.
type OrderEvent struct {
	EventID      string
	EventType    string
	OrderID      string
	ListingID    string
	BuyerID      string
	SellerID     string
	Amount       int64
	PartitionKey string
	OccurredAt   time.Time
}

// Transition is one conditional state change applied as a single store
// operation: the CAS itself, the audit row, any delivery payload, and
// the outbox event either all land or none do.
type Transition struct {
	OrderID            string
	AuditID            string
	From               []entities.OrderStatus
	To                 entities.OrderStatus
	ActorID            string
	Note               string
	At                 time.Time
	SetPaymentRef      string
	SetDeliveredAt     *time.Time
	IncrementRevisions bool
	Delivery           *entities.Delivery
	Event              *OrderEvent
}

type Repository interface {
	// CreateOrder persists a new order with its opening audit row and
	// outbox event. A second order for the same origin offer fails with
	// ErrDuplicateOrder.
	CreateOrder(ctx context.Context, order entities.Order, audit entities.AuditEntry, event *OrderEvent) error
	GetOrder(ctx context.Context, orderID string) (entities.Order, error)
	GetOrderByOriginOffer(ctx context.Context, offerID string) (entities.Order, error)
	GetOrderByPaymentRef(ctx context.Context, paymentRef string) (entities.Order, error)
	ListByBuyer(ctx context.Context, buyerID string, limit int, offset int) ([]entities.Order, error)
	ListBySeller(ctx context.Context, sellerID string, limit int, offset int) ([]entities.Order, error)
	// ApplyTransition performs the conditional update and returns the
	// order as stored afterwards; a source-state mismatch fails with
	// ErrStatusConflict and writes nothing.
	ApplyTransition(ctx context.Context, transition Transition) (entities.Order, error)
	ListDeliveries(ctx context.Context, orderID string) ([]entities.Delivery, error)
	ListAudit(ctx context.Context, orderID string) ([]entities.AuditEntry, error)
	// FindDeliveredBefore returns orders sitting in delivered since
	// before the cutoff, for the auto-accept sweep.
	FindDeliveredBefore(ctx context.Context, cutoff time.Time, limit int) ([]entities.Order, error)
	// FindPaymentOverdue returns pending_payment orders whose payment
	// deadline passed, for the timeout sweep.
	FindPaymentOverdue(ctx context.Context, now time.Time, limit int) ([]entities.Order, error)
	OwnerOf(ctx context.Context, orderID string) (string, error)
}

// PaymentGateway fronts the PSP. Intent creation happens before the
// order row exists, so a failed create leaves nothing to clean up.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (string, error)
	Refund(ctx context.Context, paymentRef string) error
}

// LedgerPoster posts order proceeds into the seller ledger. CreditProceeds
// is idempotent per order; crediting the same order twice is a no-op.
type LedgerPoster interface {
	CreditProceeds(ctx context.Context, orderID string, sellerID string, amount int64, currency string) error
	ReverseCredit(ctx context.Context, orderID string) error
}

// ListingView is the engine's read model of a listing.
type ListingView struct {
	ListingID   string
	SellerID    string
	Price       int64
	Currency    string
	Purchasable bool
	Sold        bool
}

type ListingSource interface {
	GetListing(ctx context.Context, listingID string) (ListingView, error)
	// MarkSold flips the listing to sold once the order is paid.
	MarkSold(ctx context.Context, listingID string) error
}

// OfferLapser expires an accepted offer whose order timed out unpaid.
type OfferLapser interface {
	Lapse(ctx context.Context, offerID string) error
}

// OutboxMessage is a row ready to relay from the module outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

// EventEnvelope reuses the canonical cross-module envelope.
type EventEnvelope = events.Envelope

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
