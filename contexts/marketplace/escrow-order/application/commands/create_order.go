package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "bazaar/contexts/marketplace/escrow-order/application"
	"bazaar/contexts/marketplace/escrow-order/domain/entities"
	domainerrors "bazaar/contexts/marketplace/escrow-order/domain/errors"
	"bazaar/contexts/marketplace/escrow-order/ports"
)

type CreateFromOfferCommand struct {
	OfferID   string
	ListingID string
	BuyerID   string
	SellerID  string
	Amount    int64
	Currency  string
}

type BuyNowCommand struct {
	ListingID string
	BuyerID   string
}

// CreateOrderUseCase opens escrow orders. Both entry points create the
// payment intent first and only then persist the order, so a gateway
// failure leaves no half-open row behind. The offer path is idempotent
// per origin offer: a repeated call returns the order already opened.
type CreateOrderUseCase struct {
	Orders         ports.Repository
	Listings       ports.ListingSource
	Payments       ports.PaymentGateway
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	PaymentTimeout time.Duration
	Logger         *slog.Logger
}

func (u CreateOrderUseCase) CreateFromOffer(ctx context.Context, cmd CreateFromOfferCommand) (entities.Order, error) {
	existing, err := u.Orders.GetOrderByOriginOffer(ctx, cmd.OfferID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domainerrors.ErrOrderNotFound) {
		return entities.Order{}, err
	}

	order, err := u.open(ctx, cmd.OfferID, cmd.ListingID, cmd.BuyerID, cmd.SellerID, cmd.Amount, cmd.Currency)
	if err != nil {
		if errors.Is(err, domainerrors.ErrDuplicateOrder) {
			// Lost a creation race; the winner's order is the answer.
			return u.Orders.GetOrderByOriginOffer(ctx, cmd.OfferID)
		}
		return entities.Order{}, err
	}
	return order, nil
}

func (u CreateOrderUseCase) BuyNow(ctx context.Context, cmd BuyNowCommand) (entities.Order, error) {
	listing, err := u.Listings.GetListing(ctx, cmd.ListingID)
	if err != nil {
		return entities.Order{}, err
	}
	if listing.SellerID == cmd.BuyerID {
		return entities.Order{}, domainerrors.ErrOwnListing
	}
	if listing.Sold || !listing.Purchasable {
		return entities.Order{}, domainerrors.ErrListingUnavailable
	}
	return u.open(ctx, "", listing.ListingID, cmd.BuyerID, listing.SellerID, listing.Price, listing.Currency)
}

func (u CreateOrderUseCase) open(
	ctx context.Context,
	originOfferID string,
	listingID string,
	buyerID string,
	sellerID string,
	amount int64,
	currency string,
) (entities.Order, error) {
	logger := application.ResolveLogger(u.Logger)

	orderID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Order{}, err
	}
	if currency == "" {
		currency = "USD"
	}
	paymentRef, err := u.Payments.CreateIntent(ctx, amount, currency, map[string]string{
		"order_id":   orderID,
		"listing_id": listingID,
		"buyer_id":   buyerID,
	})
	if err != nil {
		return entities.Order{}, err
	}

	now := u.now()
	order, err := entities.NewOrder(
		orderID,
		originOfferID,
		listingID,
		buyerID,
		sellerID,
		amount,
		currency,
		paymentRef,
		now,
		now.Add(u.paymentTimeout()),
	)
	if err != nil {
		return entities.Order{}, err
	}

	eventID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Order{}, err
	}
	auditID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Order{}, err
	}
	audit := entities.AuditEntry{
		AuditID:    auditID,
		OrderID:    order.OrderID,
		ToStatus:   entities.OrderStatusPendingPayment,
		ActorID:    buyerID,
		Note:       "order opened",
		OccurredAt: now,
	}
	event := &ports.OrderEvent{
		EventID:      eventID,
		EventType:    "order.created",
		OrderID:      order.OrderID,
		ListingID:    order.ListingID,
		BuyerID:      order.BuyerID,
		SellerID:     order.SellerID,
		Amount:       order.Amount,
		PartitionKey: order.OrderID,
		OccurredAt:   now,
	}
	if err := u.Orders.CreateOrder(ctx, order, audit, event); err != nil {
		return entities.Order{}, err
	}

	logger.Info("order opened",
		"event", "order_created",
		"module", "marketplace/escrow-order",
		"layer", "application",
		"order_id", order.OrderID,
		"listing_id", order.ListingID,
		"origin_offer_id", order.OriginOfferID,
		"amount", order.Amount,
	)
	return order, nil
}

func (u CreateOrderUseCase) paymentTimeout() time.Duration {
	if u.PaymentTimeout <= 0 {
		return 24 * time.Hour
	}
	return u.PaymentTimeout
}

func (u CreateOrderUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
