package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"bazaar/contexts/marketplace/listing-registry/domain/entities"
	domainerrors "bazaar/contexts/marketplace/listing-registry/domain/errors"

	"github.com/google/uuid"
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

type listingModel struct {
	ListingID string    `gorm:"column:listing_id;primaryKey"`
	SellerID  string    `gorm:"column:seller_id;not null;index"`
	Title     string    `gorm:"column:title;not null"`
	Type      string    `gorm:"column:type"`
	Price     int64     `gorm:"column:price;not null"`
	Currency  string    `gorm:"column:currency;not null"`
	Status    string    `gorm:"column:status;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (listingModel) TableName() string { return "listings" }

func (m listingModel) toEntity() entities.Listing {
	return entities.Listing{
		ListingID: m.ListingID,
		SellerID:  m.SellerID,
		Title:     m.Title,
		Type:      m.Type,
		Price:     m.Price,
		Currency:  m.Currency,
		Status:    entities.ListingStatus(m.Status),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func listingModelFromEntity(listing entities.Listing) listingModel {
	return listingModel{
		ListingID: listing.ListingID,
		SellerID:  listing.SellerID,
		Title:     listing.Title,
		Type:      listing.Type,
		Price:     listing.Price,
		Currency:  listing.Currency,
		Status:    string(listing.Status),
		CreatedAt: listing.CreatedAt.UTC(),
		UpdatedAt: listing.UpdatedAt.UTC(),
	}
}

func (r *Repository) CreateListing(ctx context.Context, listing entities.Listing) error {
	row := listingModelFromEntity(listing)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) GetListing(ctx context.Context, listingID string) (entities.Listing, error) {
	var row listingModel
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Listing{}, domainerrors.ErrListingNotFound
		}
		return entities.Listing{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListBySeller(ctx context.Context, sellerID string, limit int, offset int) ([]entities.Listing, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rows []listingModel
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.Listing, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) UpdateListingFields(ctx context.Context, listing entities.Listing) error {
	result := r.db.WithContext(ctx).
		Model(&listingModel{}).
		Where("listing_id = ?", listing.ListingID).
		Updates(map[string]any{
			"title":      listing.Title,
			"price":      listing.Price,
			"updated_at": listing.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrListingNotFound
	}
	return nil
}

func (r *Repository) UpdateListingStatus(
	ctx context.Context,
	listingID string,
	from []entities.ListingStatus,
	to entities.ListingStatus,
	updatedAt time.Time,
) error {
	statuses := make([]string, 0, len(from))
	for _, status := range from {
		statuses = append(statuses, string(status))
	}

	result := r.db.WithContext(ctx).
		Model(&listingModel{}).
		Where("listing_id = ? AND status IN ?", listingID, statuses).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": updatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&listingModel{}).
			Where("listing_id = ?", listingID).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrListingNotFound
		}
		return domainerrors.ErrStatusConflict
	}
	return nil
}

func (r *Repository) OwnerOf(ctx context.Context, listingID string) (string, error) {
	listing, err := r.GetListing(ctx, listingID)
	if err != nil {
		return "", err
	}
	return listing.SellerID, nil
}

// Models exposes the adapter's table set for bootstrap migration.
func Models() []any {
	return []any{&listingModel{}}
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
