package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainerrors "bazaar/contexts/identity-access/access-guard/domain/errors"
	"bazaar/contexts/identity-access/access-guard/ports"

	"gorm.io/gorm"
)

// Repository backs the guard's identity lookups for the lazy capability
// re-checks. Account writes belong to the onboarding surface, not here.
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

type identityModel struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	Role      string    `gorm:"column:role;not null"`
	UserType  string    `gorm:"column:user_type;not null"`
	HypeMode  bool      `gorm:"column:hype_mode;not null;default:false"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (identityModel) TableName() string { return "identities" }

func (r *Repository) FindByID(ctx context.Context, userID string) (ports.Identity, error) {
	var row identityModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Identity{}, domainerrors.ErrNotFound
		}
		return ports.Identity{}, err
	}
	return ports.Identity{
		UserID:   row.UserID,
		Role:     ports.Role(row.Role),
		UserType: ports.UserType(row.UserType),
		HypeMode: row.HypeMode,
		Active:   row.Active,
	}, nil
}

// Models exposes the adapter's table set for bootstrap migration.
func Models() []any {
	return []any{&identityModel{}}
}
