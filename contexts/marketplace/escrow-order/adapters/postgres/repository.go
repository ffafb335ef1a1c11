package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"bazaar/contexts/marketplace/escrow-order/domain/entities"
	domainerrors "bazaar/contexts/marketplace/escrow-order/domain/errors"
	"bazaar/contexts/marketplace/escrow-order/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

type orderModel struct {
	OrderID       string    `gorm:"column:order_id;primaryKey"`
	OriginOfferID *string   `gorm:"column:origin_offer_id;uniqueIndex"`
	ListingID     string    `gorm:"column:listing_id;not null;index"`
	BuyerID       string    `gorm:"column:buyer_id;not null;index"`
	SellerID      string    `gorm:"column:seller_id;not null;index"`
	Amount        int64     `gorm:"column:amount;not null"`
	Currency      string    `gorm:"column:currency;not null"`
	Status        string    `gorm:"column:status;not null;index"`
	PaymentRef    string    `gorm:"column:payment_ref;index"`
	Revisions     int       `gorm:"column:revisions;not null;default:0"`
	MaxRevisions  int       `gorm:"column:max_revisions;not null"`
	PaymentDueAt  time.Time `gorm:"column:payment_due_at;index"`
	DeliveredAt   time.Time `gorm:"column:delivered_at"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (orderModel) TableName() string { return "orders" }

type deliveryModel struct {
	DeliveryID  string    `gorm:"column:delivery_id;primaryKey"`
	OrderID     string    `gorm:"column:order_id;not null;index"`
	Message     string    `gorm:"column:message;not null"`
	Attachments string    `gorm:"column:attachments;not null"`
	SubmittedAt time.Time `gorm:"column:submitted_at"`
}

func (deliveryModel) TableName() string { return "order_deliveries" }

type auditModel struct {
	AuditID    string    `gorm:"column:audit_id;primaryKey"`
	OrderID    string    `gorm:"column:order_id;not null;index"`
	FromStatus string    `gorm:"column:from_status"`
	ToStatus   string    `gorm:"column:to_status;not null"`
	ActorID    string    `gorm:"column:actor_id"`
	Note       string    `gorm:"column:note"`
	OccurredAt time.Time `gorm:"column:occurred_at"`
}

func (auditModel) TableName() string { return "order_audit" }

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type;not null"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload;not null"`
	Status       string     `gorm:"column:status;not null;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	SentAt       *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string { return "order_outbox" }

func (m orderModel) toEntity() entities.Order {
	order := entities.Order{
		OrderID:      m.OrderID,
		ListingID:    m.ListingID,
		BuyerID:      m.BuyerID,
		SellerID:     m.SellerID,
		Amount:       m.Amount,
		Currency:     m.Currency,
		Status:       entities.OrderStatus(m.Status),
		PaymentRef:   m.PaymentRef,
		Revisions:    m.Revisions,
		MaxRevisions: m.MaxRevisions,
		PaymentDueAt: m.PaymentDueAt.UTC(),
		DeliveredAt:  m.DeliveredAt.UTC(),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
	if m.OriginOfferID != nil {
		order.OriginOfferID = *m.OriginOfferID
	}
	return order
}

func orderModelFromEntity(order entities.Order) orderModel {
	row := orderModel{
		OrderID:      order.OrderID,
		ListingID:    order.ListingID,
		BuyerID:      order.BuyerID,
		SellerID:     order.SellerID,
		Amount:       order.Amount,
		Currency:     order.Currency,
		Status:       string(order.Status),
		PaymentRef:   order.PaymentRef,
		Revisions:    order.Revisions,
		MaxRevisions: order.MaxRevisions,
		PaymentDueAt: order.PaymentDueAt.UTC(),
		DeliveredAt:  order.DeliveredAt.UTC(),
		CreatedAt:    order.CreatedAt.UTC(),
		UpdatedAt:    order.UpdatedAt.UTC(),
	}
	if order.OriginOfferID != "" {
		offerID := order.OriginOfferID
		row.OriginOfferID = &offerID
	}
	return row
}

func (r *Repository) CreateOrder(ctx context.Context, order entities.Order, audit entities.AuditEntry, event *ports.OrderEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := orderModelFromEntity(order)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrDuplicateOrder
			}
			return err
		}
		if err := tx.Create(auditModelFromEntity(audit)).Error; err != nil {
			return err
		}
		if event != nil {
			outboxRow, err := outboxRowFromEvent(*event)
			if err != nil {
				return err
			}
			if err := tx.Create(outboxRow).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) GetOrder(ctx context.Context, orderID string) (entities.Order, error) {
	return r.getBy(ctx, "order_id = ?", orderID)
}

func (r *Repository) GetOrderByOriginOffer(ctx context.Context, offerID string) (entities.Order, error) {
	return r.getBy(ctx, "origin_offer_id = ?", offerID)
}

func (r *Repository) GetOrderByPaymentRef(ctx context.Context, paymentRef string) (entities.Order, error) {
	return r.getBy(ctx, "payment_ref = ?", paymentRef)
}

func (r *Repository) getBy(ctx context.Context, where string, arg string) (entities.Order, error) {
	var row orderModel
	err := r.db.WithContext(ctx).
		Where(where, arg).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Order{}, domainerrors.ErrOrderNotFound
		}
		return entities.Order{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListByBuyer(ctx context.Context, buyerID string, limit int, offset int) ([]entities.Order, error) {
	return r.list(ctx, "buyer_id = ?", buyerID, limit, offset)
}

func (r *Repository) ListBySeller(ctx context.Context, sellerID string, limit int, offset int) ([]entities.Order, error) {
	return r.list(ctx, "seller_id = ?", sellerID, limit, offset)
}

func (r *Repository) list(ctx context.Context, where string, arg string, limit int, offset int) ([]entities.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rows []orderModel
	if err := r.db.WithContext(ctx).
		Where(where, arg).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.Order, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ApplyTransition(ctx context.Context, transition ports.Transition) (entities.Order, error) {
	var updated entities.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		statuses := make([]string, 0, len(transition.From))
		for _, status := range transition.From {
			statuses = append(statuses, string(status))
		}

		fields := map[string]any{
			"status":     string(transition.To),
			"updated_at": transition.At.UTC(),
		}
		if transition.SetDeliveredAt != nil {
			fields["delivered_at"] = transition.SetDeliveredAt.UTC()
		}
		if transition.IncrementRevisions {
			fields["revisions"] = gorm.Expr("revisions + 1")
		}

		result := tx.Model(&orderModel{}).
			Where("order_id = ? AND status IN ?", transition.OrderID, statuses).
			Updates(fields)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&orderModel{}).
				Where("order_id = ?", transition.OrderID).
				Count(&count).
				Error; err != nil {
				return err
			}
			if count == 0 {
				return domainerrors.ErrOrderNotFound
			}
			return domainerrors.ErrStatusConflict
		}

		var row orderModel
		if err := tx.Where("order_id = ?", transition.OrderID).First(&row).Error; err != nil {
			return err
		}
		fromStatus := ""
		if len(transition.From) == 1 {
			fromStatus = string(transition.From[0])
		}
		if err := tx.Create(&auditModel{
			AuditID:    transition.AuditID,
			OrderID:    transition.OrderID,
			FromStatus: fromStatus,
			ToStatus:   string(transition.To),
			ActorID:    transition.ActorID,
			Note:       transition.Note,
			OccurredAt: transition.At.UTC(),
		}).Error; err != nil {
			return err
		}
		if transition.Delivery != nil {
			deliveryRow, err := deliveryModelFromEntity(*transition.Delivery)
			if err != nil {
				return err
			}
			if err := tx.Create(deliveryRow).Error; err != nil {
				return err
			}
		}
		if transition.Event != nil {
			outboxRow, err := outboxRowFromEvent(*transition.Event)
			if err != nil {
				return err
			}
			if err := tx.Create(outboxRow).Error; err != nil {
				return err
			}
		}
		updated = row.toEntity()
		return nil
	})
	if err != nil {
		return entities.Order{}, err
	}
	return updated, nil
}

func (r *Repository) ListDeliveries(ctx context.Context, orderID string) ([]entities.Delivery, error) {
	var rows []deliveryModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("submitted_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.Delivery, 0, len(rows))
	for _, row := range rows {
		var attachments []string
		if err := json.Unmarshal([]byte(row.Attachments), &attachments); err != nil {
			return nil, err
		}
		items = append(items, entities.Delivery{
			DeliveryID:  row.DeliveryID,
			OrderID:     row.OrderID,
			Message:     row.Message,
			Attachments: attachments,
			SubmittedAt: row.SubmittedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) ListAudit(ctx context.Context, orderID string) ([]entities.AuditEntry, error) {
	var rows []auditModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("occurred_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.AuditEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.AuditEntry{
			AuditID:    row.AuditID,
			OrderID:    row.OrderID,
			FromStatus: entities.OrderStatus(row.FromStatus),
			ToStatus:   entities.OrderStatus(row.ToStatus),
			ActorID:    row.ActorID,
			Note:       row.Note,
			OccurredAt: row.OccurredAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) FindDeliveredBefore(ctx context.Context, cutoff time.Time, limit int) ([]entities.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []orderModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND delivered_at < ?", string(entities.OrderStatusDelivered), cutoff.UTC()).
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.Order, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) FindPaymentOverdue(ctx context.Context, now time.Time, limit int) ([]entities.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []orderModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND payment_due_at < ?", string(entities.OrderStatusPendingPayment), now.UTC()).
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.Order, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) OwnerOf(ctx context.Context, orderID string) (string, error) {
	order, err := r.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	return order.BuyerID, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	at := sentAt.UTC()
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":  outboxStatusSent,
			"sent_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrOrderNotFound
	}
	return nil
}

func auditModelFromEntity(audit entities.AuditEntry) *auditModel {
	return &auditModel{
		AuditID:    audit.AuditID,
		OrderID:    audit.OrderID,
		FromStatus: string(audit.FromStatus),
		ToStatus:   string(audit.ToStatus),
		ActorID:    audit.ActorID,
		Note:       audit.Note,
		OccurredAt: audit.OccurredAt.UTC(),
	}
}

func deliveryModelFromEntity(delivery entities.Delivery) (*deliveryModel, error) {
	attachments, err := json.Marshal(delivery.Attachments)
	if err != nil {
		return nil, err
	}
	return &deliveryModel{
		DeliveryID:  delivery.DeliveryID,
		OrderID:     delivery.OrderID,
		Message:     delivery.Message,
		Attachments: string(attachments),
		SubmittedAt: delivery.SubmittedAt.UTC(),
	}, nil
}

func outboxRowFromEvent(event ports.OrderEvent) (*outboxModel, error) {
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
		return nil, err
	}
	envelope.Data = data
	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, err
	}

	return &outboxModel{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    event.OccurredAt.UTC(),
	}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Models exposes the adapter's table set for bootstrap migration.
func Models() []any {
	return []any{&orderModel{}, &deliveryModel{}, &auditModel{}, &outboxModel{}}
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
