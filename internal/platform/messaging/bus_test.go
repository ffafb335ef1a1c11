package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"bazaar/contexts/marketplace/escrow-order/ports"
)

func testEnvelope(id, eventType string) ports.EventEnvelope {
	return ports.EventEnvelope{
		EventID:       id,
		EventType:     eventType,
		OccurredAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		SourceService: "escrow-order",
		SchemaVersion: 1,
		PartitionKey:  "order-1",
	}
}

func TestPublishReachesSubscriber(t *testing.T) {
	bus, err := NewBus(nil, nil)
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan ports.EventEnvelope, 1)
	err = bus.Subscribe(ctx, "marketplace.orders", "notifications", func(_ context.Context, e ports.EventEnvelope) error {
		received <- e
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := bus.Publish(ctx, "marketplace.orders", testEnvelope("evt-1", "order.paid")); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-received:
		if got.EventID != "evt-1" || got.EventType != "order.paid" {
			t.Fatalf("unexpected envelope %q %q", got.EventID, got.EventType)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never reached subscriber")
	}
}

func TestPublishWithoutSubscribersSucceeds(t *testing.T) {
	bus, err := NewBus([]string{"localhost:9092"}, nil)
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	if err := bus.Publish(context.Background(), "marketplace.offers", testEnvelope("evt-2", "offer.lapsed")); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func TestHandlerErrorDoesNotStopConsumption(t *testing.T) {
	bus, err := NewBus(nil, nil)
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seen := make(chan string, 2)
	err = bus.Subscribe(ctx, "marketplace.orders", "projections", func(_ context.Context, e ports.EventEnvelope) error {
		seen <- e.EventID
		if e.EventID == "evt-bad" {
			return errors.New("projection write failed")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	for _, id := range []string{"evt-bad", "evt-good"} {
		if err := bus.Publish(ctx, "marketplace.orders", testEnvelope(id, "order.delivered")); err != nil {
			t.Fatalf("Publish %s: %v", id, err)
		}
	}

	for _, want := range []string{"evt-bad", "evt-good"} {
		select {
		case got := <-seen:
			if got != want {
				t.Fatalf("got event %q, want %q", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("never saw event %q", want)
		}
	}
}

func TestCancelledSubscriberDetaches(t *testing.T) {
	bus, err := NewBus(nil, nil)
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := bus.Subscribe(ctx, "marketplace.ledger", "payouts", func(context.Context, ports.EventEnvelope) error {
		return nil
	}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for {
		bus.mu.RLock()
		remaining := len(bus.topics["marketplace.ledger"])
		bus.mu.RUnlock()
		if remaining == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("subscription still attached after cancel, %d remaining", remaining)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
