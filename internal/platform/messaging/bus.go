package messaging

import (
	"context"
	"log/slog"
	"sync"

	"bazaar/contexts/marketplace/escrow-order/ports"
)

// subscriberBuffer bounds how far a consumer may lag before the bus starts
// shedding events for it. The outbox relay re-publishes unacknowledged rows,
// so a shed event is retried rather than lost.
const subscriberBuffer = 128

type subscription struct {
	group string
	ch    chan ports.EventEnvelope
}

// Bus fans marketplace events out from the outbox relay to in-process
// consumers. It keeps the Kafka topic/consumer-group vocabulary so the
// broker-backed implementation can slot in behind the same ports.
type Bus struct {
	mu     sync.RWMutex
	topics map[string][]*subscription
	logger *slog.Logger
}

// NewBus accepts the configured broker list for wiring parity with the
// external deployment; the in-process bus does not dial anything.
func NewBus(_ []string, logger *slog.Logger) (*Bus, error) {
	return &Bus{
		topics: make(map[string][]*subscription),
		logger: logger,
	}, nil
}

func (b *Bus) Publish(ctx context.Context, topic string, event ports.EventEnvelope) error {
	b.mu.RLock()
	subs := append([]*subscription(nil), b.topics[topic]...)
	b.mu.RUnlock()

	delivered := 0
	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub.ch <- event:
			delivered++
		default:
			b.log().Warn("shedding event for lagging consumer",
				"event", "bus_consumer_lagging",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"consumer_group", sub.group,
				"event_id", event.EventID,
			)
		}
	}

	b.log().Info("marketplace event published",
		"event", "bus_event_published",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"delivered", delivered,
	)
	return nil
}

// Subscribe attaches handler to topic until ctx is cancelled. Handler errors
// are logged and the subscription keeps consuming; redelivery is the outbox
// relay's job, not the bus's.
func (b *Bus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	sub := &subscription{
		group: consumerGroup,
		ch:    make(chan ports.EventEnvelope, subscriberBuffer),
	}

	b.mu.Lock()
	b.topics[topic] = append(b.topics[topic], sub)
	b.mu.Unlock()

	go b.consume(ctx, topic, sub, handler)
	return nil
}

func (b *Bus) consume(
	ctx context.Context,
	topic string,
	sub *subscription,
	handler func(context.Context, ports.EventEnvelope) error,
) {
	defer b.detach(topic, sub)

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-sub.ch:
			if err := handler(ctx, event); err != nil {
				b.log().Error("event handler failed",
					"event", "bus_handler_failed",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", topic,
					"consumer_group", sub.group,
					"event_id", event.EventID,
					"event_type", event.EventType,
					"error", err.Error(),
				)
			}
		}
	}
}

func (b *Bus) detach(topic string, target *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[topic]
	for i, sub := range subs {
		if sub == target {
			b.topics[topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func (b *Bus) log() *slog.Logger {
	if b.logger != nil {
		return b.logger
	}
	return slog.Default()
}
