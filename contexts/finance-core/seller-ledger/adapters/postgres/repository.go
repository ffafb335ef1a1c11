package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"bazaar/contexts/finance-core/seller-ledger/domain/entities"
	domainerrors "bazaar/contexts/finance-core/seller-ledger/domain/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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

type entryModel struct {
	EntryID             string    `gorm:"column:entry_id;primaryKey"`
	OrderID             string    `gorm:"column:order_id;uniqueIndex;not null"`
	SellerID            string    `gorm:"column:seller_id;not null;index"`
	Gross               int64     `gorm:"column:gross;not null"`
	Fee                 int64     `gorm:"column:fee;not null"`
	Net                 int64     `gorm:"column:net;not null"`
	Currency            string    `gorm:"column:currency;not null"`
	Status              string    `gorm:"column:status;not null;index"`
	NeedsReconciliation bool      `gorm:"column:needs_reconciliation;not null;default:false"`
	AvailableAt         time.Time `gorm:"column:available_at;index"`
	CreatedAt           time.Time `gorm:"column:created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at"`
}

func (entryModel) TableName() string { return "ledger_entries" }

type withdrawalModel struct {
	WithdrawalID  string    `gorm:"column:withdrawal_id;primaryKey"`
	SellerID      string    `gorm:"column:seller_id;not null;index"`
	Amount        int64     `gorm:"column:amount;not null"`
	Currency      string    `gorm:"column:currency;not null"`
	Status        string    `gorm:"column:status;not null;index"`
	TransferID    string    `gorm:"column:transfer_id"`
	FailureReason string    `gorm:"column:failure_reason"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (withdrawalModel) TableName() string { return "withdrawals" }

func (m entryModel) toEntity() entities.LedgerEntry {
	return entities.LedgerEntry{
		EntryID:             m.EntryID,
		OrderID:             m.OrderID,
		SellerID:            m.SellerID,
		Gross:               m.Gross,
		Fee:                 m.Fee,
		Net:                 m.Net,
		Currency:            m.Currency,
		Status:              entities.EntryStatus(m.Status),
		NeedsReconciliation: m.NeedsReconciliation,
		AvailableAt:         m.AvailableAt.UTC(),
		CreatedAt:           m.CreatedAt.UTC(),
		UpdatedAt:           m.UpdatedAt.UTC(),
	}
}

func (m withdrawalModel) toEntity() entities.Withdrawal {
	return entities.Withdrawal{
		WithdrawalID:  m.WithdrawalID,
		SellerID:      m.SellerID,
		Amount:        m.Amount,
		Currency:      m.Currency,
		Status:        entities.WithdrawalStatus(m.Status),
		TransferID:    m.TransferID,
		FailureReason: m.FailureReason,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

func (r *Repository) InsertEntry(ctx context.Context, entry entities.LedgerEntry) error {
	row := entryModel{
		EntryID:     entry.EntryID,
		OrderID:     entry.OrderID,
		SellerID:    entry.SellerID,
		Gross:       entry.Gross,
		Fee:         entry.Fee,
		Net:         entry.Net,
		Currency:    entry.Currency,
		Status:      string(entry.Status),
		AvailableAt: entry.AvailableAt.UTC(),
		CreatedAt:   entry.CreatedAt.UTC(),
		UpdatedAt:   entry.UpdatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateEntry
		}
		return err
	}
	return nil
}

func (r *Repository) GetEntryByOrder(ctx context.Context, orderID string) (entities.LedgerEntry, error) {
	var row entryModel
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.LedgerEntry{}, domainerrors.ErrEntryNotFound
		}
		return entities.LedgerEntry{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ReverseEntry(ctx context.Context, orderID string, now time.Time) error {
	// ErrAlreadyWithdrawn must not roll back the reconciliation flag,
	// so it is surfaced after the transaction commits.
	var reverseErr error
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row entryModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_id = ?", orderID).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrEntryNotFound
			}
			return err
		}

		switch entities.EntryStatus(row.Status) {
		case entities.EntryStatusReversed:
			return nil
		case entities.EntryStatusAvailable:
			// The coverage check races withdrawal inserts for the same
			// seller; the row lock above covers only this entry.
			if err := lockSellerLedger(tx, row.SellerID); err != nil {
				return err
			}
			available, err := availableBalance(tx, row.SellerID)
			if err != nil {
				return err
			}
			if available < row.Net {
				flagErr := tx.Model(&entryModel{}).
					Where("order_id = ?", orderID).
					Updates(map[string]any{
						"needs_reconciliation": true,
						"updated_at":           now.UTC(),
					}).
					Error
				if flagErr != nil {
					return flagErr
				}
				reverseErr = domainerrors.ErrAlreadyWithdrawn
				return nil
			}
		}

		return tx.Model(&entryModel{}).
			Where("order_id = ?", orderID).
			Updates(map[string]any{
				"status":     string(entities.EntryStatusReversed),
				"updated_at": now.UTC(),
			}).
			Error
	})
	if err != nil {
		return err
	}
	return reverseErr
}

func (r *Repository) MatureEntries(ctx context.Context, now time.Time) (int, error) {
	result := r.db.WithContext(ctx).
		Model(&entryModel{}).
		Where("status = ? AND available_at <= ?", string(entities.EntryStatusPending), now.UTC()).
		Updates(map[string]any{
			"status":     string(entities.EntryStatusAvailable),
			"updated_at": now.UTC(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

func (r *Repository) Balance(ctx context.Context, sellerID string) (entities.BalanceSnapshot, error) {
	snapshot := entities.BalanceSnapshot{SellerID: sellerID}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending, available, held, withdrawn int64
		if err := sumEntries(tx, sellerID, entities.EntryStatusPending, &pending); err != nil {
			return err
		}
		if err := sumEntries(tx, sellerID, entities.EntryStatusAvailable, &available); err != nil {
			return err
		}
		if err := tx.Model(&withdrawalModel{}).
			Where("seller_id = ? AND status IN ?", sellerID, []string{
				string(entities.WithdrawalStatusPending),
				string(entities.WithdrawalStatusProcessing),
				string(entities.WithdrawalStatusCompleted),
			}).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&held).
			Error; err != nil {
			return err
		}
		if err := tx.Model(&withdrawalModel{}).
			Where("seller_id = ? AND status = ?", sellerID, string(entities.WithdrawalStatusCompleted)).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&withdrawn).
			Error; err != nil {
			return err
		}
		snapshot.Pending = pending
		snapshot.Available = available - held
		snapshot.Withdrawn = withdrawn
		return nil
	})
	if err != nil {
		return entities.BalanceSnapshot{}, err
	}
	return snapshot, nil
}

func (r *Repository) CreateWithdrawal(ctx context.Context, withdrawal entities.Withdrawal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The reserve is a sum-then-insert; without a per-seller lock two
		// concurrent requests would each see the pre-insert balance.
		if err := lockSellerLedger(tx, withdrawal.SellerID); err != nil {
			return err
		}
		available, err := availableBalance(tx, withdrawal.SellerID)
		if err != nil {
			return err
		}
		if withdrawal.Amount > available {
			return domainerrors.ErrInsufficientAvailable
		}
		return tx.Create(&withdrawalModel{
			WithdrawalID: withdrawal.WithdrawalID,
			SellerID:     withdrawal.SellerID,
			Amount:       withdrawal.Amount,
			Currency:     withdrawal.Currency,
			Status:       string(withdrawal.Status),
			CreatedAt:    withdrawal.CreatedAt.UTC(),
			UpdatedAt:    withdrawal.UpdatedAt.UTC(),
		}).Error
	})
}

func (r *Repository) GetWithdrawal(ctx context.Context, withdrawalID string) (entities.Withdrawal, error) {
	var row withdrawalModel
	err := r.db.WithContext(ctx).
		Where("withdrawal_id = ?", withdrawalID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Withdrawal{}, domainerrors.ErrWithdrawalNotFound
		}
		return entities.Withdrawal{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListWithdrawals(ctx context.Context, sellerID string, limit int, offset int) ([]entities.Withdrawal, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rows []withdrawalModel
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.Withdrawal, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) FindPendingWithdrawals(ctx context.Context, limit int) ([]entities.Withdrawal, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []withdrawalModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(entities.WithdrawalStatusPending)).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.Withdrawal, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) UpdateWithdrawalStatus(
	ctx context.Context,
	withdrawalID string,
	from []entities.WithdrawalStatus,
	to entities.WithdrawalStatus,
	transferID string,
	failureReason string,
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
	if transferID != "" {
		fields["transfer_id"] = transferID
	}
	if failureReason != "" {
		fields["failure_reason"] = failureReason
	}

	result := r.db.WithContext(ctx).
		Model(&withdrawalModel{}).
		Where("withdrawal_id = ? AND status IN ?", withdrawalID, statuses).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&withdrawalModel{}).
			Where("withdrawal_id = ?", withdrawalID).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrWithdrawalNotFound
		}
		return domainerrors.ErrStatusConflict
	}
	return nil
}

func sumEntries(tx *gorm.DB, sellerID string, status entities.EntryStatus, out *int64) error {
	return tx.Model(&entryModel{}).
		Where("seller_id = ? AND status = ?", sellerID, string(status)).
		Select("COALESCE(SUM(net), 0)").
		Scan(out).
		Error
}

// lockSellerLedger serializes balance math for one seller inside the
// surrounding transaction. Advisory, released at commit or rollback.
func lockSellerLedger(tx *gorm.DB, sellerID string) error {
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", sellerID).Error
}

func availableBalance(tx *gorm.DB, sellerID string) (int64, error) {
	var available, held int64
	if err := sumEntries(tx, sellerID, entities.EntryStatusAvailable, &available); err != nil {
		return 0, err
	}
	if err := tx.Model(&withdrawalModel{}).
		Where("seller_id = ? AND status IN ?", sellerID, []string{
			string(entities.WithdrawalStatusPending),
			string(entities.WithdrawalStatusProcessing),
			string(entities.WithdrawalStatusCompleted),
		}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&held).
		Error; err != nil {
		return 0, err
	}
	return available - held, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Models exposes the adapter's table set for bootstrap migration.
func Models() []any {
	return []any{&entryModel{}, &withdrawalModel{}}
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
