package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"bazaar/contexts/marketplace/escrow-order/domain/entities"
	domainerrors "bazaar/contexts/marketplace/escrow-order/domain/errors"
	"bazaar/contexts/marketplace/escrow-order/ports"

	"github.com/google/uuid"
)

// Store is the in-memory adapter for local runtime and tests. A single
// mutex critical section stands in for the transaction: order write,
// audit row, delivery, and outbox append succeed or fail together.
type Store struct {
	mu           sync.RWMutex
	orders       map[string]entities.Order
	byOffer      map[string]string
	byPaymentRef map[string]string
	deliveries   map[string][]entities.Delivery
	audits       map[string][]entities.AuditEntry
	outbox       map[string]ports.OutboxMessage
	outboxOrder  []string
	outboxSent   map[string]time.Time
}

func NewStore() *Store {
	return &Store{
		orders:       make(map[string]entities.Order),
		byOffer:      make(map[string]string),
		byPaymentRef: make(map[string]string),
		deliveries:   make(map[string][]entities.Delivery),
		audits:       make(map[string][]entities.AuditEntry),
		outbox:       make(map[string]ports.OutboxMessage),
		outboxOrder:  make([]string, 0),
		outboxSent:   make(map[string]time.Time),
	}
}

func (s *Store) CreateOrder(_ context.Context, order entities.Order, audit entities.AuditEntry, event *ports.OrderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := strings.TrimSpace(order.OrderID)
	if id == "" {
		return domainerrors.ErrInvalidOrder
	}
	if _, exists := s.orders[id]; exists {
		return domainerrors.ErrStatusConflict
	}
	if order.OriginOfferID != "" {
		if _, exists := s.byOffer[order.OriginOfferID]; exists {
			return domainerrors.ErrDuplicateOrder
		}
	}

	s.orders[id] = order
	if order.OriginOfferID != "" {
		s.byOffer[order.OriginOfferID] = id
	}
	if order.PaymentRef != "" {
		s.byPaymentRef[order.PaymentRef] = id
	}
	s.audits[id] = append(s.audits[id], audit)
	if event != nil {
		if err := s.appendOutboxLocked(*event); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetOrder(_ context.Context, orderID string) (entities.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(orderID)
}

func (s *Store) getLocked(orderID string) (entities.Order, error) {
	order, ok := s.orders[strings.TrimSpace(orderID)]
	if !ok {
		return entities.Order{}, domainerrors.ErrOrderNotFound
	}
	return order, nil
}

func (s *Store) GetOrderByOriginOffer(_ context.Context, offerID string) (entities.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byOffer[strings.TrimSpace(offerID)]
	if !ok {
		return entities.Order{}, domainerrors.ErrOrderNotFound
	}
	return s.getLocked(id)
}

func (s *Store) GetOrderByPaymentRef(_ context.Context, paymentRef string) (entities.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPaymentRef[strings.TrimSpace(paymentRef)]
	if !ok {
		return entities.Order{}, domainerrors.ErrOrderNotFound
	}
	return s.getLocked(id)
}

func (s *Store) ListByBuyer(_ context.Context, buyerID string, limit int, offset int) ([]entities.Order, error) {
	return s.list(func(o entities.Order) bool { return o.BuyerID == buyerID }, limit, offset)
}

func (s *Store) ListBySeller(_ context.Context, sellerID string, limit int, offset int) ([]entities.Order, error) {
	return s.list(func(o entities.Order) bool { return o.SellerID == sellerID }, limit, offset)
}

func (s *Store) list(match func(entities.Order) bool, limit int, offset int) ([]entities.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	items := make([]entities.Order, 0)
	for _, order := range s.orders {
		if match(order) {
			items = append(items, order)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if offset >= len(items) {
		return []entities.Order{}, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return append([]entities.Order(nil), items[offset:end]...), nil
}

func (s *Store) ApplyTransition(_ context.Context, transition ports.Transition) (entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.getLocked(transition.OrderID)
	if err != nil {
		return entities.Order{}, err
	}
	matched := false
	for _, status := range transition.From {
		if order.Status == status {
			matched = true
			break
		}
	}
	if !matched {
		return entities.Order{}, domainerrors.ErrStatusConflict
	}

	fromStatus := order.Status
	order.Status = transition.To
	order.UpdatedAt = transition.At.UTC()
	if transition.SetDeliveredAt != nil {
		order.DeliveredAt = transition.SetDeliveredAt.UTC()
	}
	if transition.IncrementRevisions {
		order.Revisions++
	}
	s.orders[order.OrderID] = order

	s.audits[order.OrderID] = append(s.audits[order.OrderID], entities.AuditEntry{
		AuditID:    transition.AuditID,
		OrderID:    order.OrderID,
		FromStatus: fromStatus,
		ToStatus:   transition.To,
		ActorID:    transition.ActorID,
		Note:       transition.Note,
		OccurredAt: transition.At.UTC(),
	})
	if transition.Delivery != nil {
		s.deliveries[order.OrderID] = append(s.deliveries[order.OrderID], *transition.Delivery)
	}
	if transition.Event != nil {
		if err := s.appendOutboxLocked(*transition.Event); err != nil {
			return entities.Order{}, err
		}
	}
	return order, nil
}

func (s *Store) ListDeliveries(_ context.Context, orderID string) ([]entities.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Delivery(nil), s.deliveries[strings.TrimSpace(orderID)]...), nil
}

func (s *Store) ListAudit(_ context.Context, orderID string) ([]entities.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.AuditEntry(nil), s.audits[strings.TrimSpace(orderID)]...), nil
}

func (s *Store) FindDeliveredBefore(_ context.Context, cutoff time.Time, limit int) ([]entities.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]entities.Order, 0)
	for _, order := range s.orders {
		if order.Status == entities.OrderStatusDelivered && order.DeliveredAt.Before(cutoff) {
			items = append(items, order)
		}
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (s *Store) FindPaymentOverdue(_ context.Context, now time.Time, limit int) ([]entities.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]entities.Order, 0)
	for _, order := range s.orders {
		if order.Status == entities.OrderStatusPendingPayment && now.UTC().After(order.PaymentDueAt) {
			items = append(items, order)
		}
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (s *Store) OwnerOf(ctx context.Context, orderID string) (string, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	return order.BuyerID, nil
}

func (s *Store) appendOutboxLocked(event ports.OrderEvent) error {
	envelope := ports.EventEnvelope{
		EventID:          event.EventID,
		EventType:        event.EventType,
		OccurredAt:       event.OccurredAt,
		SourceService:    "escrow-order-engine",
		SchemaVersion:    1,
		PartitionKeyPath: "order_id",
		PartitionKey:     event.PartitionKey,
	}
	data, err := json.Marshal(map[string]any{
		"order_id":   event.OrderID,
		"listing_id": event.ListingID,
		"buyer_id":   event.BuyerID,
		"seller_id":  event.SellerID,
		"amount":     event.Amount,
	})
	if err != nil {
		return err
	}
	envelope.Data = data
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	s.outbox[event.EventID] = ports.OutboxMessage{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      payload,
		CreatedAt:    event.OccurredAt,
	}
	s.outboxOrder = append(s.outboxOrder, event.EventID)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	pending := make([]ports.OutboxMessage, 0)
	for _, id := range s.outboxOrder {
		if _, sent := s.outboxSent[id]; sent {
			continue
		}
		if msg, ok := s.outbox[id]; ok {
			pending = append(pending, msg)
		}
		if len(pending) >= limit {
			break
		}
	}
	return pending, nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.outbox[outboxID]; !ok {
		return domainerrors.ErrOrderNotFound
	}
	s.outboxSent[outboxID] = sentAt.UTC()
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
