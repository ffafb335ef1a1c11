package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"bazaar/contexts/marketplace/offer-engine/domain/entities"
	domainerrors "bazaar/contexts/marketplace/offer-engine/domain/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
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

// open_key is listing_id:buyer_id while the offer is open and NULL once
// it closes. The partial-unique effect of NULLs is what enforces the
// single-open-offer rule at the database level.
type offerModel struct {
	OfferID       string    `gorm:"column:offer_id;primaryKey"`
	ListingID     string    `gorm:"column:listing_id;not null;index"`
	BuyerID       string    `gorm:"column:buyer_id;not null;index"`
	SellerID      string    `gorm:"column:seller_id;not null;index"`
	Amount        int64     `gorm:"column:amount;not null"`
	CounterAmount int64     `gorm:"column:counter_amount"`
	Message       string    `gorm:"column:message"`
	Status        string    `gorm:"column:status;not null;index"`
	OpenKey       *string   `gorm:"column:open_key;uniqueIndex"`
	ExpiresAt     time.Time `gorm:"column:expires_at;index"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (offerModel) TableName() string { return "offers" }

func (m offerModel) toEntity() entities.Offer {
	return entities.Offer{
		OfferID:       m.OfferID,
		ListingID:     m.ListingID,
		BuyerID:       m.BuyerID,
		SellerID:      m.SellerID,
		Amount:        m.Amount,
		CounterAmount: m.CounterAmount,
		Message:       m.Message,
		Status:        entities.OfferStatus(m.Status),
		ExpiresAt:     m.ExpiresAt.UTC(),
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

func offerModelFromEntity(offer entities.Offer) offerModel {
	row := offerModel{
		OfferID:       offer.OfferID,
		ListingID:     offer.ListingID,
		BuyerID:       offer.BuyerID,
		SellerID:      offer.SellerID,
		Amount:        offer.Amount,
		CounterAmount: offer.CounterAmount,
		Message:       offer.Message,
		Status:        string(offer.Status),
		ExpiresAt:     offer.ExpiresAt.UTC(),
		CreatedAt:     offer.CreatedAt.UTC(),
		UpdatedAt:     offer.UpdatedAt.UTC(),
	}
	if offer.Open() {
		key := offer.ListingID + ":" + offer.BuyerID
		row.OpenKey = &key
	}
	return row
}

func (r *Repository) CreateOffer(ctx context.Context, offer entities.Offer) error {
	row := offerModelFromEntity(offer)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrOpenOfferExists
		}
		return err
	}
	return nil
}

func (r *Repository) GetOffer(ctx context.Context, offerID string) (entities.Offer, error) {
	var row offerModel
	err := r.db.WithContext(ctx).
		Where("offer_id = ?", offerID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Offer{}, domainerrors.ErrOfferNotFound
		}
		return entities.Offer{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListByBuyer(ctx context.Context, buyerID string, limit int, offset int) ([]entities.Offer, error) {
	return r.list(ctx, "buyer_id = ?", buyerID, limit, offset)
}

func (r *Repository) ListBySeller(ctx context.Context, sellerID string, limit int, offset int) ([]entities.Offer, error) {
	return r.list(ctx, "seller_id = ?", sellerID, limit, offset)
}

func (r *Repository) list(ctx context.Context, where string, arg string, limit int, offset int) ([]entities.Offer, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rows []offerModel
	if err := r.db.WithContext(ctx).
		Where(where, arg).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.Offer, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) UpdateOfferStatus(
	ctx context.Context,
	offerID string,
	from []entities.OfferStatus,
	to entities.OfferStatus,
	counterAmount int64,
	updatedAt time.Time,
) error {
	statuses := make([]string, 0, len(from))
	for _, status := range from {
		statuses = append(statuses, string(status))
	}

	fields := map[string]any{
		"status":     string(to),
		"updated_at": updatedAt.UTC(),
	}
	if counterAmount > 0 {
		fields["counter_amount"] = counterAmount
	}
	if !stillOpen(to) {
		fields["open_key"] = nil
	}

	result := r.db.WithContext(ctx).
		Model(&offerModel{}).
		Where("offer_id = ? AND status IN ?", offerID, statuses).
		Updates(fields)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainerrors.ErrOpenOfferExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&offerModel{}).
			Where("offer_id = ?", offerID).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrOfferNotFound
		}
		return domainerrors.ErrStatusConflict
	}
	return nil
}

func (r *Repository) ExpireOpenOffers(ctx context.Context, now time.Time) (int, error) {
	result := r.db.WithContext(ctx).
		Model(&offerModel{}).
		Where("status IN ? AND expires_at < ?",
			[]string{string(entities.OfferStatusPending), string(entities.OfferStatusCountered)},
			now.UTC(),
		).
		Updates(map[string]any{
			"status":     string(entities.OfferStatusExpired),
			"open_key":   nil,
			"updated_at": now.UTC(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

func (r *Repository) OwnerOf(ctx context.Context, offerID string) (string, error) {
	offer, err := r.GetOffer(ctx, offerID)
	if err != nil {
		return "", err
	}
	return offer.BuyerID, nil
}

func stillOpen(status entities.OfferStatus) bool {
	return status == entities.OfferStatusPending || status == entities.OfferStatusCountered
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Models exposes the adapter's table set for bootstrap migration.
func Models() []any {
	return []any{&offerModel{}}
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
