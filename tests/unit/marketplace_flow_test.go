package unit

import (
	"context"
	"errors"
	"testing"

	ledgererrors "bazaar/contexts/finance-core/seller-ledger/domain/errors"
	ordercommands "bazaar/contexts/marketplace/escrow-order/application/commands"
	orderentities "bazaar/contexts/marketplace/escrow-order/domain/entities"
	ordererrors "bazaar/contexts/marketplace/escrow-order/domain/errors"
	orderports "bazaar/contexts/marketplace/escrow-order/ports"
	listingentities "bazaar/contexts/marketplace/listing-registry/domain/entities"
	offercommands "bazaar/contexts/marketplace/offer-engine/application/commands"
	offerentities "bazaar/contexts/marketplace/offer-engine/domain/entities"
	offererrors "bazaar/contexts/marketplace/offer-engine/domain/errors"
	offerports "bazaar/contexts/marketplace/offer-engine/ports"
)

func TestAcceptedOfferSettlesIntoSellerLedger(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	listing := w.activeListing(t, "seller-1", 10000)

	offer, err := w.offers.CreateOffer.Execute(ctx, offercommands.CreateOfferCommand{
		ListingID: listing.ListingID,
		BuyerID:   "buyer-1",
		Amount:    8000,
		Message:   "would pay 80 for this",
	})
	if err != nil {
		t.Fatalf("create offer: %v", err)
	}

	accepted, err := w.offers.AcceptOffer.Execute(ctx, offercommands.AcceptOfferCommand{
		OfferID: offer.OfferID,
		Actor:   offerports.Actor{UserID: "seller-1"},
	})
	if err != nil {
		t.Fatalf("accept offer: %v", err)
	}
	if accepted.Offer.Status != offerentities.OfferStatusAccepted {
		t.Fatalf("expected accepted offer, got %s", accepted.Offer.Status)
	}
	if accepted.Order.OrderID == "" {
		t.Fatalf("expected escrow order to open on accept")
	}

	order, err := w.orders.Repository.GetOrder(ctx, accepted.Order.OrderID)
	if err != nil {
		t.Fatalf("load order: %v", err)
	}
	if order.Status != orderentities.OrderStatusPendingPayment {
		t.Fatalf("expected pending_payment, got %s", order.Status)
	}
	if order.Amount != 8000 {
		t.Fatalf("expected order at the offer amount, got %d", order.Amount)
	}

	paid := w.pay(t, order)
	if paid.Status != orderentities.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", paid.Status)
	}

	sold, err := w.listings.Service.Get(ctx, listing.ListingID)
	if err != nil {
		t.Fatalf("reload listing: %v", err)
	}
	if sold.Status != listingentities.ListingStatusSold {
		t.Fatalf("expected listing sold after payment, got %s", sold.Status)
	}

	w.deliver(t, order.OrderID, "seller-1")
	completed, err := w.orders.AcceptDelivery.Execute(ctx, ordercommands.AcceptDeliveryCommand{
		OrderID: order.OrderID,
		Actor:   orderports.Actor{UserID: "buyer-1"},
	})
	if err != nil {
		t.Fatalf("accept delivery: %v", err)
	}
	if completed.Status != orderentities.OrderStatusCompleted {
		t.Fatalf("expected completed, got %s", completed.Status)
	}

	balance, err := w.ledger.Service.Balance(ctx, "seller-1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	// 10% platform fee on 8000 leaves 7200, pending until clearance.
	if balance.Pending != 7200 {
		t.Fatalf("expected 7200 pending, got %d", balance.Pending)
	}
	if balance.Available != 0 || balance.Withdrawn != 0 {
		t.Fatalf("expected nothing available or withdrawn yet, got %+v", balance)
	}
}

func TestOfferAboveCeilingRefused(t *testing.T) {
	w := newWorld(t)
	listing := w.activeListing(t, "seller-1", 10000)

	_, err := w.offers.CreateOffer.Execute(context.Background(), offercommands.CreateOfferCommand{
		ListingID: listing.ListingID,
		BuyerID:   "buyer-1",
		Amount:    30001,
	})
	var ceilingErr *offererrors.CeilingError
	if !errors.As(err, &ceilingErr) {
		t.Fatalf("expected ceiling error, got %v", err)
	}
	if ceilingErr.Ceiling != 30000 {
		t.Fatalf("expected ceiling 30000, got %d", ceilingErr.Ceiling)
	}
}

func TestSoldListingTakesNoFurtherOffers(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	listing := w.activeListing(t, "seller-1", 10000)

	order, err := w.orders.CreateOrder.BuyNow(ctx, ordercommands.BuyNowCommand{
		ListingID: listing.ListingID,
		BuyerID:   "buyer-1",
	})
	if err != nil {
		t.Fatalf("buy now: %v", err)
	}
	w.pay(t, order)

	_, err = w.offers.CreateOffer.Execute(ctx, offercommands.CreateOfferCommand{
		ListingID: listing.ListingID,
		BuyerID:   "buyer-2",
		Amount:    9000,
	})
	if !errors.Is(err, offererrors.ErrListingUnavailable) {
		t.Fatalf("expected ErrListingUnavailable, got %v", err)
	}

	_, err = w.orders.CreateOrder.BuyNow(ctx, ordercommands.BuyNowCommand{
		ListingID: listing.ListingID,
		BuyerID:   "buyer-2",
	})
	if !errors.Is(err, ordererrors.ErrListingUnavailable) {
		t.Fatalf("expected ErrListingUnavailable on buy-now, got %v", err)
	}
}

func TestDuplicatePaymentConfirmationReplays(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	listing := w.activeListing(t, "seller-1", 10000)

	order, err := w.orders.CreateOrder.BuyNow(ctx, ordercommands.BuyNowCommand{
		ListingID: listing.ListingID,
		BuyerID:   "buyer-1",
	})
	if err != nil {
		t.Fatalf("buy now: %v", err)
	}

	first := w.pay(t, order)
	second := w.pay(t, order)
	if first.OrderID != second.OrderID {
		t.Fatalf("replayed confirmation returned a different order")
	}
	if second.Status != orderentities.OrderStatusPaid {
		t.Fatalf("expected paid on replay, got %s", second.Status)
	}
}

func TestRefundResolutionReversesProceeds(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	listing := w.activeListing(t, "seller-1", 10000)

	order, err := w.orders.CreateOrder.BuyNow(ctx, ordercommands.BuyNowCommand{
		ListingID: listing.ListingID,
		BuyerID:   "buyer-1",
	})
	if err != nil {
		t.Fatalf("buy now: %v", err)
	}
	w.pay(t, order)
	w.deliver(t, order.OrderID, "seller-1")

	if _, err := w.orders.RaiseDispute.Execute(ctx, ordercommands.RaiseDisputeCommand{
		OrderID: order.OrderID,
		Actor:   orderports.Actor{UserID: "buyer-1"},
		Reason:  "files are corrupt",
	}); err != nil {
		t.Fatalf("raise dispute: %v", err)
	}

	refunded, err := w.orders.ResolveDispute.Execute(ctx, ordercommands.ResolveDisputeCommand{
		OrderID:    order.OrderID,
		Actor:      orderports.Actor{UserID: "admin-1", Admin: true},
		Resolution: "refund",
	})
	if err != nil {
		t.Fatalf("resolve dispute: %v", err)
	}
	if refunded.Status != orderentities.OrderStatusRefunded {
		t.Fatalf("expected refunded, got %s", refunded.Status)
	}
	if !w.psp.Refunded(order.PaymentRef) {
		t.Fatalf("expected gateway refund for %s", order.PaymentRef)
	}

	balance, err := w.ledger.Service.Balance(ctx, "seller-1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Pending != 0 || balance.Available != 0 {
		t.Fatalf("expected reversed proceeds, got %+v", balance)
	}
}

func TestRevisionCapHoldsAcrossDeliveries(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	listing := w.activeListing(t, "seller-1", 10000)

	order, err := w.orders.CreateOrder.BuyNow(ctx, ordercommands.BuyNowCommand{
		ListingID: listing.ListingID,
		BuyerID:   "buyer-1",
	})
	if err != nil {
		t.Fatalf("buy now: %v", err)
	}
	w.pay(t, order)
	w.deliver(t, order.OrderID, "seller-1")

	for i := 0; i < orderentities.DefaultMaxRevisions; i++ {
		if _, err := w.orders.RequestRevision.Execute(ctx, ordercommands.RequestRevisionCommand{
			OrderID: order.OrderID,
			Actor:   orderports.Actor{UserID: "buyer-1"},
			Note:    "colors are off",
		}); err != nil {
			t.Fatalf("revision %d: %v", i+1, err)
		}
		if _, err := w.orders.Deliver.Execute(ctx, ordercommands.DeliverOrderCommand{
			OrderID:     order.OrderID,
			Actor:       orderports.Actor{UserID: "seller-1"},
			Message:     "reworked",
			Attachments: []string{"s3://deliveries/rework.zip"},
		}); err != nil {
			t.Fatalf("redeliver %d: %v", i+1, err)
		}
	}

	_, err = w.orders.RequestRevision.Execute(ctx, ordercommands.RequestRevisionCommand{
		OrderID: order.OrderID,
		Actor:   orderports.Actor{UserID: "buyer-1"},
		Note:    "one more pass",
	})
	if !errors.Is(err, ordererrors.ErrRevisionCapReached) {
		t.Fatalf("expected ErrRevisionCapReached, got %v", err)
	}
}

func TestStrangerCannotDriveAnOrder(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	listing := w.activeListing(t, "seller-1", 10000)

	order, err := w.orders.CreateOrder.BuyNow(ctx, ordercommands.BuyNowCommand{
		ListingID: listing.ListingID,
		BuyerID:   "buyer-1",
	})
	if err != nil {
		t.Fatalf("buy now: %v", err)
	}
	w.pay(t, order)

	_, err = w.orders.StartWork.Execute(ctx, ordercommands.StartWorkCommand{
		OrderID: order.OrderID,
		Actor:   orderports.Actor{UserID: "seller-2"},
	})
	if !errors.Is(err, ordererrors.ErrNotOrderSeller) {
		t.Fatalf("expected ErrNotOrderSeller, got %v", err)
	}

	w.deliver(t, order.OrderID, "seller-1")
	_, err = w.orders.AcceptDelivery.Execute(ctx, ordercommands.AcceptDeliveryCommand{
		OrderID: order.OrderID,
		Actor:   orderports.Actor{UserID: "buyer-2"},
	})
	if !errors.Is(err, ordererrors.ErrNotOrderBuyer) {
		t.Fatalf("expected ErrNotOrderBuyer, got %v", err)
	}
}

func TestProceedsStayHeldUntilClearance(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	listing := w.activeListing(t, "seller-1", 10000)

	order, err := w.orders.CreateOrder.BuyNow(ctx, ordercommands.BuyNowCommand{
		ListingID: listing.ListingID,
		BuyerID:   "buyer-1",
	})
	if err != nil {
		t.Fatalf("buy now: %v", err)
	}
	w.pay(t, order)
	w.deliver(t, order.OrderID, "seller-1")
	if _, err := w.orders.AcceptDelivery.Execute(ctx, ordercommands.AcceptDeliveryCommand{
		OrderID: order.OrderID,
		Actor:   orderports.Actor{UserID: "buyer-1"},
	}); err != nil {
		t.Fatalf("accept delivery: %v", err)
	}

	// Proceeds are pending, so an immediate withdrawal has nothing to draw on.
	_, err = w.ledger.Service.RequestWithdrawal(ctx, "seller-1", 1000)
	if !errors.Is(err, ledgererrors.ErrInsufficientAvailable) {
		t.Fatalf("expected ErrInsufficientAvailable, got %v", err)
	}

	balance, err := w.ledger.Service.Balance(ctx, "seller-1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Pending != 9000 {
		t.Fatalf("expected 9000 pending, got %d", balance.Pending)
	}
}

func TestSingleOpenOfferPerBuyerAndListing(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	listing := w.activeListing(t, "seller-1", 10000)

	if _, err := w.offers.CreateOffer.Execute(ctx, offercommands.CreateOfferCommand{
		ListingID: listing.ListingID,
		BuyerID:   "buyer-1",
		Amount:    8000,
	}); err != nil {
		t.Fatalf("first offer: %v", err)
	}

	_, err := w.offers.CreateOffer.Execute(ctx, offercommands.CreateOfferCommand{
		ListingID: listing.ListingID,
		BuyerID:   "buyer-1",
		Amount:    8500,
	})
	if !errors.Is(err, offererrors.ErrOpenOfferExists) {
		t.Fatalf("expected ErrOpenOfferExists, got %v", err)
	}
}

func TestAcceptReplayReturnsSameOrder(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	listing := w.activeListing(t, "seller-1", 10000)

	offer, err := w.offers.CreateOffer.Execute(ctx, offercommands.CreateOfferCommand{
		ListingID: listing.ListingID,
		BuyerID:   "buyer-1",
		Amount:    8000,
	})
	if err != nil {
		t.Fatalf("create offer: %v", err)
	}

	first, err := w.offers.AcceptOffer.Execute(ctx, offercommands.AcceptOfferCommand{
		OfferID: offer.OfferID,
		Actor:   offerports.Actor{UserID: "seller-1"},
	})
	if err != nil {
		t.Fatalf("first accept: %v", err)
	}
	second, err := w.offers.AcceptOffer.Execute(ctx, offercommands.AcceptOfferCommand{
		OfferID: offer.OfferID,
		Actor:   offerports.Actor{UserID: "seller-1"},
	})
	if err != nil {
		t.Fatalf("replayed accept: %v", err)
	}
	if !second.Replayed {
		t.Fatalf("expected replay to be flagged")
	}
	if first.Order.OrderID != second.Order.OrderID {
		t.Fatalf("replay opened a second order: %s vs %s", first.Order.OrderID, second.Order.OrderID)
	}
}
