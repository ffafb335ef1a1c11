package commands_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"bazaar/contexts/marketplace/escrow-order/adapters/memory"
	"bazaar/contexts/marketplace/escrow-order/application/commands"
	"bazaar/contexts/marketplace/escrow-order/application/workers"
	"bazaar/contexts/marketplace/escrow-order/domain/entities"
	domainerrors "bazaar/contexts/marketplace/escrow-order/domain/errors"
	"bazaar/contexts/marketplace/escrow-order/ports"
)

const (
	buyerID  = "buyer-1"
	sellerID = "seller-1"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type seqIDs struct{ next int }

func (g *seqIDs) NewID(_ context.Context) (string, error) {
	g.next++
	return "id-" + strconv.Itoa(g.next), nil
}

type stubListings struct {
	listings map[string]ports.ListingView
	sold     map[string]bool
}

func (s *stubListings) GetListing(_ context.Context, listingID string) (ports.ListingView, error) {
	listing, ok := s.listings[listingID]
	if !ok {
		return ports.ListingView{}, domainerrors.ErrListingUnavailable
	}
	if s.sold[listingID] {
		listing.Sold = true
		listing.Purchasable = false
	}
	return listing, nil
}

func (s *stubListings) MarkSold(_ context.Context, listingID string) error {
	if s.sold == nil {
		s.sold = make(map[string]bool)
	}
	if s.sold[listingID] {
		return errors.New("already sold")
	}
	s.sold[listingID] = true
	return nil
}

type fakeGateway struct {
	intents int
	refunds []string
}

func (g *fakeGateway) CreateIntent(_ context.Context, _ int64, _ string, _ map[string]string) (string, error) {
	g.intents++
	return "pay-" + strconv.Itoa(g.intents), nil
}

func (g *fakeGateway) Refund(_ context.Context, paymentRef string) error {
	g.refunds = append(g.refunds, paymentRef)
	return nil
}

type fakeLedger struct {
	credits  map[string]int64
	reversed map[string]bool
}

func (l *fakeLedger) CreditProceeds(_ context.Context, orderID string, _ string, amount int64, _ string) error {
	if l.credits == nil {
		l.credits = make(map[string]int64)
	}
	if _, ok := l.credits[orderID]; ok {
		return nil
	}
	l.credits[orderID] = amount
	return nil
}

func (l *fakeLedger) ReverseCredit(_ context.Context, orderID string) error {
	if l.reversed == nil {
		l.reversed = make(map[string]bool)
	}
	l.reversed[orderID] = true
	return nil
}

type stubLapser struct{ lapsed []string }

func (s *stubLapser) Lapse(_ context.Context, offerID string) error {
	s.lapsed = append(s.lapsed, offerID)
	return nil
}

type fixture struct {
	store    *memory.Store
	listings *stubListings
	gateway  *fakeGateway
	ledger   *fakeLedger
	clock    fixedClock
	ids      *seqIDs
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return fixture{
		store: memory.NewStore(),
		listings: &stubListings{listings: map[string]ports.ListingView{
			"listing-1": {
				ListingID:   "listing-1",
				SellerID:    sellerID,
				Price:       100,
				Currency:    "USD",
				Purchasable: true,
			},
		}},
		gateway: &fakeGateway{},
		ledger:  &fakeLedger{},
		clock:   fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		ids:     &seqIDs{},
	}
}

func (f fixture) create() commands.CreateOrderUseCase {
	return commands.CreateOrderUseCase{
		Orders:      f.store,
		Listings:    f.listings,
		Payments:    f.gateway,
		Clock:       f.clock,
		IDGenerator: f.ids,
	}
}

func (f fixture) confirm() commands.ConfirmPaymentUseCase {
	return commands.ConfirmPaymentUseCase{
		Orders:      f.store,
		Listings:    f.listings,
		Clock:       f.clock,
		IDGenerator: f.ids,
	}
}

func (f fixture) accept() commands.AcceptDeliveryUseCase {
	return commands.AcceptDeliveryUseCase{
		Orders:      f.store,
		Ledger:      f.ledger,
		Clock:       f.clock,
		IDGenerator: f.ids,
	}
}

// paidOrder drives a fresh order through buy-now and payment.
func (f fixture) paidOrder(t *testing.T) entities.Order {
	t.Helper()
	ctx := context.Background()
	order, err := f.create().BuyNow(ctx, commands.BuyNowCommand{ListingID: "listing-1", BuyerID: buyerID})
	if err != nil {
		t.Fatalf("buy now: %v", err)
	}
	paid, err := f.confirm().Execute(ctx, commands.ConfirmPaymentCommand{PaymentRef: order.PaymentRef})
	if err != nil {
		t.Fatalf("confirm payment: %v", err)
	}
	return paid
}

// deliveredOrder continues through start and deliver.
func (f fixture) deliveredOrder(t *testing.T) entities.Order {
	t.Helper()
	ctx := context.Background()
	order := f.paidOrder(t)

	start := commands.StartWorkUseCase{Orders: f.store, Clock: f.clock, IDGenerator: f.ids}
	if _, err := start.Execute(ctx, commands.StartWorkCommand{
		OrderID: order.OrderID,
		Actor:   ports.Actor{UserID: sellerID},
	}); err != nil {
		t.Fatalf("start work: %v", err)
	}

	deliver := commands.DeliverOrderUseCase{Orders: f.store, Clock: f.clock, IDGenerator: f.ids}
	delivered, err := deliver.Execute(ctx, commands.DeliverOrderCommand{
		OrderID:     order.OrderID,
		Actor:       ports.Actor{UserID: sellerID},
		Message:     "done, files attached",
		Attachments: []string{"https://files.example/final.zip"},
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	return delivered
}

func TestBuyNowOpensPendingPaymentOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.create().BuyNow(ctx, commands.BuyNowCommand{ListingID: "listing-1", BuyerID: buyerID})
	if err != nil {
		t.Fatalf("buy now: %v", err)
	}
	if order.Status != entities.OrderStatusPendingPayment {
		t.Fatalf("expected pending_payment, got %s", order.Status)
	}
	if order.Amount != 100 {
		t.Fatalf("expected listing price 100, got %d", order.Amount)
	}
	if order.PaymentRef == "" {
		t.Fatalf("expected payment intent reference")
	}
}

func TestBuyNowOwnListing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.create().BuyNow(ctx, commands.BuyNowCommand{ListingID: "listing-1", BuyerID: sellerID})
	if !errors.Is(err, domainerrors.ErrOwnListing) {
		t.Fatalf("expected ErrOwnListing, got %v", err)
	}
}

func TestBuyNowSoldListing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.listings.sold = map[string]bool{"listing-1": true}

	_, err := f.create().BuyNow(ctx, commands.BuyNowCommand{ListingID: "listing-1", BuyerID: buyerID})
	if !errors.Is(err, domainerrors.ErrListingUnavailable) {
		t.Fatalf("expected ErrListingUnavailable, got %v", err)
	}
}

func TestConfirmPaymentMarksListingSold(t *testing.T) {
	f := newFixture(t)
	order := f.paidOrder(t)

	if order.Status != entities.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", order.Status)
	}
	if !f.listings.sold["listing-1"] {
		t.Fatalf("expected listing flipped to sold")
	}
}

func TestConfirmPaymentDuplicateIsReplay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	order := f.paidOrder(t)

	again, err := f.confirm().Execute(ctx, commands.ConfirmPaymentCommand{PaymentRef: order.PaymentRef})
	if err != nil {
		t.Fatalf("duplicate confirm: %v", err)
	}
	if again.Status != entities.OrderStatusPaid {
		t.Fatalf("expected replayed paid order, got %s", again.Status)
	}
	audit, err := f.store.ListAudit(ctx, order.OrderID)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	// create + paid only; the replay wrote nothing.
	if len(audit) != 2 {
		t.Fatalf("expected 2 audit rows, got %d", len(audit))
	}
}

func TestConfirmPaymentUnknownRef(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.confirm().Execute(ctx, commands.ConfirmPaymentCommand{PaymentRef: "pay-unknown"})
	if !errors.Is(err, domainerrors.ErrPaymentUnknown) {
		t.Fatalf("expected ErrPaymentUnknown, got %v", err)
	}
}

func TestDeliverRequiresAttachment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	order := f.paidOrder(t)

	start := commands.StartWorkUseCase{Orders: f.store, Clock: f.clock, IDGenerator: f.ids}
	if _, err := start.Execute(ctx, commands.StartWorkCommand{
		OrderID: order.OrderID,
		Actor:   ports.Actor{UserID: sellerID},
	}); err != nil {
		t.Fatalf("start: %v", err)
	}

	deliver := commands.DeliverOrderUseCase{Orders: f.store, Clock: f.clock, IDGenerator: f.ids}
	_, err := deliver.Execute(ctx, commands.DeliverOrderCommand{
		OrderID: order.OrderID,
		Actor:   ports.Actor{UserID: sellerID},
		Message: "done",
	})
	if !errors.Is(err, domainerrors.ErrInvalidDelivery) {
		t.Fatalf("expected ErrInvalidDelivery, got %v", err)
	}
}

func TestAcceptDeliveryCreditsSellerOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	order := f.deliveredOrder(t)

	completed, err := f.accept().Execute(ctx, commands.AcceptDeliveryCommand{
		OrderID: order.OrderID,
		Actor:   ports.Actor{UserID: buyerID},
	})
	if err != nil {
		t.Fatalf("accept delivery: %v", err)
	}
	if completed.Status != entities.OrderStatusCompleted {
		t.Fatalf("expected completed, got %s", completed.Status)
	}
	if f.ledger.credits[order.OrderID] != 100 {
		t.Fatalf("expected credit of 100, got %d", f.ledger.credits[order.OrderID])
	}

	// Repeat acceptance replays without a second credit.
	if _, err := f.accept().Execute(ctx, commands.AcceptDeliveryCommand{
		OrderID: order.OrderID,
		Actor:   ports.Actor{UserID: buyerID},
	}); err != nil {
		t.Fatalf("repeat accept: %v", err)
	}
	if len(f.ledger.credits) != 1 {
		t.Fatalf("expected a single credit entry, got %d", len(f.ledger.credits))
	}
}

func TestRevisionCap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	order := f.deliveredOrder(t)

	revision := commands.RequestRevisionUseCase{Orders: f.store, Clock: f.clock, IDGenerator: f.ids}
	deliver := commands.DeliverOrderUseCase{Orders: f.store, Clock: f.clock, IDGenerator: f.ids}

	for i := 0; i < entities.DefaultMaxRevisions; i++ {
		updated, err := revision.Execute(ctx, commands.RequestRevisionCommand{
			OrderID: order.OrderID,
			Actor:   ports.Actor{UserID: buyerID},
		})
		if err != nil {
			t.Fatalf("revision %d: %v", i+1, err)
		}
		if updated.Revisions != i+1 {
			t.Fatalf("expected revisions %d, got %d", i+1, updated.Revisions)
		}
		if _, err := deliver.Execute(ctx, commands.DeliverOrderCommand{
			OrderID:     order.OrderID,
			Actor:       ports.Actor{UserID: sellerID},
			Message:     "updated delivery",
			Attachments: []string{"https://files.example/v2.zip"},
		}); err != nil {
			t.Fatalf("redeliver %d: %v", i+1, err)
		}
	}

	_, err := revision.Execute(ctx, commands.RequestRevisionCommand{
		OrderID: order.OrderID,
		Actor:   ports.Actor{UserID: buyerID},
	})
	if !errors.Is(err, domainerrors.ErrRevisionCapReached) {
		t.Fatalf("expected ErrRevisionCapReached, got %v", err)
	}
}

func TestDisputeRefundReversesCreditAndRefundsPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	order := f.deliveredOrder(t)

	dispute := commands.RaiseDisputeUseCase{Orders: f.store, Clock: f.clock, IDGenerator: f.ids}
	if _, err := dispute.Execute(ctx, commands.RaiseDisputeCommand{
		OrderID: order.OrderID,
		Actor:   ports.Actor{UserID: buyerID},
		Reason:  "not as described",
	}); err != nil {
		t.Fatalf("raise dispute: %v", err)
	}

	resolve := commands.ResolveDisputeUseCase{
		Orders:      f.store,
		Ledger:      f.ledger,
		Payments:    f.gateway,
		Clock:       f.clock,
		IDGenerator: f.ids,
	}

	// Non-admins cannot resolve.
	if _, err := resolve.Execute(ctx, commands.ResolveDisputeCommand{
		OrderID:    order.OrderID,
		Actor:      ports.Actor{UserID: sellerID},
		Resolution: commands.ResolutionRefund,
	}); !errors.Is(err, domainerrors.ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}

	refunded, err := resolve.Execute(ctx, commands.ResolveDisputeCommand{
		OrderID:    order.OrderID,
		Actor:      ports.Actor{UserID: "admin-1", Admin: true},
		Resolution: commands.ResolutionRefund,
	})
	if err != nil {
		t.Fatalf("resolve refund: %v", err)
	}
	if refunded.Status != entities.OrderStatusRefunded {
		t.Fatalf("expected refunded, got %s", refunded.Status)
	}
	if !f.ledger.reversed[order.OrderID] {
		t.Fatalf("expected ledger reversal")
	}
	if len(f.gateway.refunds) != 1 {
		t.Fatalf("expected one gateway refund, got %d", len(f.gateway.refunds))
	}
}

func TestDisputeResumeReturnsToInProgress(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	order := f.deliveredOrder(t)

	dispute := commands.RaiseDisputeUseCase{Orders: f.store, Clock: f.clock, IDGenerator: f.ids}
	if _, err := dispute.Execute(ctx, commands.RaiseDisputeCommand{
		OrderID: order.OrderID,
		Actor:   ports.Actor{UserID: sellerID},
	}); err != nil {
		t.Fatalf("raise dispute: %v", err)
	}

	resolve := commands.ResolveDisputeUseCase{
		Orders:      f.store,
		Ledger:      f.ledger,
		Payments:    f.gateway,
		Clock:       f.clock,
		IDGenerator: f.ids,
	}
	resumed, err := resolve.Execute(ctx, commands.ResolveDisputeCommand{
		OrderID:    order.OrderID,
		Actor:      ports.Actor{UserID: "admin-1", Admin: true},
		Resolution: commands.ResolutionResume,
	})
	if err != nil {
		t.Fatalf("resolve resume: %v", err)
	}
	if resumed.Status != entities.OrderStatusInProgress {
		t.Fatalf("expected in_progress, got %s", resumed.Status)
	}
}

func TestDisputeFromUnpaidOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.create().BuyNow(ctx, commands.BuyNowCommand{ListingID: "listing-1", BuyerID: buyerID})
	if err != nil {
		t.Fatalf("buy now: %v", err)
	}

	// A payment reversal can freeze the order before it reaches paid.
	dispute := commands.RaiseDisputeUseCase{Orders: f.store, Clock: f.clock, IDGenerator: f.ids}
	disputed, err := dispute.Execute(ctx, commands.RaiseDisputeCommand{
		OrderID: order.OrderID,
		Actor:   ports.Actor{UserID: buyerID},
		Reason:  "payment reversed at the gateway",
	})
	if err != nil {
		t.Fatalf("raise dispute from pending_payment: %v", err)
	}
	if disputed.Status != entities.OrderStatusDisputed {
		t.Fatalf("expected disputed, got %s", disputed.Status)
	}

	// Refund resolution works even though no credit was ever posted.
	resolve := commands.ResolveDisputeUseCase{
		Orders:      f.store,
		Ledger:      f.ledger,
		Payments:    f.gateway,
		Clock:       f.clock,
		IDGenerator: f.ids,
	}
	refunded, err := resolve.Execute(ctx, commands.ResolveDisputeCommand{
		OrderID:    order.OrderID,
		Actor:      ports.Actor{UserID: "admin-1", Admin: true},
		Resolution: commands.ResolutionRefund,
	})
	if err != nil {
		t.Fatalf("resolve refund: %v", err)
	}
	if refunded.Status != entities.OrderStatusRefunded {
		t.Fatalf("expected refunded, got %s", refunded.Status)
	}
}

func TestPaymentSweeperCancelsAndLapsesOffer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.create().CreateFromOffer(ctx, commands.CreateFromOfferCommand{
		OfferID:   "offer-1",
		ListingID: "listing-1",
		BuyerID:   buyerID,
		SellerID:  sellerID,
		Amount:    80,
		Currency:  "USD",
	})
	if err != nil {
		t.Fatalf("create from offer: %v", err)
	}

	lapser := &stubLapser{}
	sweeper := workers.PaymentTimeoutSweeper{
		Orders:      f.store,
		Offers:      lapser,
		Clock:       fixedClock{now: f.clock.now.Add(25 * time.Hour)},
		IDGenerator: f.ids,
	}
	if err := sweeper.RunOnce(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	cancelled, err := f.store.GetOrder(ctx, order.OrderID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cancelled.Status != entities.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if len(lapser.lapsed) != 1 || lapser.lapsed[0] != "offer-1" {
		t.Fatalf("expected origin offer lapsed, got %v", lapser.lapsed)
	}
}

func TestCreateFromOfferIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cmd := commands.CreateFromOfferCommand{
		OfferID:   "offer-1",
		ListingID: "listing-1",
		BuyerID:   buyerID,
		SellerID:  sellerID,
		Amount:    80,
	}
	first, err := f.create().CreateFromOffer(ctx, cmd)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := f.create().CreateFromOffer(ctx, cmd)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.OrderID != first.OrderID {
		t.Fatalf("expected same order on repeat, got %s and %s", first.OrderID, second.OrderID)
	}
}

func TestAutoAcceptorCompletesStaleDeliveries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	order := f.deliveredOrder(t)

	acceptor := workers.AutoAcceptor{
		Orders: f.store,
		Accept: f.accept(),
		Clock:  fixedClock{now: f.clock.now.Add(73 * time.Hour)},
	}
	if err := acceptor.RunOnce(ctx); err != nil {
		t.Fatalf("auto-accept: %v", err)
	}

	completed, err := f.store.GetOrder(ctx, order.OrderID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if completed.Status != entities.OrderStatusCompleted {
		t.Fatalf("expected completed, got %s", completed.Status)
	}
	if f.ledger.credits[order.OrderID] != 100 {
		t.Fatalf("expected credit posted by auto-accept")
	}
}
