package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bazaar/contexts/finance-core/seller-ledger/domain/entities"
	domainerrors "bazaar/contexts/finance-core/seller-ledger/domain/errors"

	"github.com/google/uuid"
)

// Store is the in-memory ledger for local runtime and tests. Every
// compound invariant (withdrawal reserve, reversal coverage check) runs
// inside one mutex critical section, mirroring the transactional
// behaviour of the postgres adapter.
type Store struct {
	mu          sync.RWMutex
	entries     map[string]entities.LedgerEntry // keyed by order id
	withdrawals map[string]entities.Withdrawal
}

func NewStore() *Store {
	return &Store{
		entries:     make(map[string]entities.LedgerEntry),
		withdrawals: make(map[string]entities.Withdrawal),
	}
}

func (s *Store) InsertEntry(_ context.Context, entry entities.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	orderID := strings.TrimSpace(entry.OrderID)
	if orderID == "" {
		return domainerrors.ErrEntryNotFound
	}
	if _, exists := s.entries[orderID]; exists {
		return domainerrors.ErrDuplicateEntry
	}
	s.entries[orderID] = entry
	return nil
}

func (s *Store) GetEntryByOrder(_ context.Context, orderID string) (entities.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[strings.TrimSpace(orderID)]
	if !ok {
		return entities.LedgerEntry{}, domainerrors.ErrEntryNotFound
	}
	return entry, nil
}

func (s *Store) ReverseEntry(_ context.Context, orderID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[strings.TrimSpace(orderID)]
	if !ok {
		return domainerrors.ErrEntryNotFound
	}

	switch entry.Status {
	case entities.EntryStatusReversed:
		return nil
	case entities.EntryStatusPending:
	case entities.EntryStatusAvailable:
		// The entry's net must still be covered by the available
		// balance; otherwise the funds already left via a withdrawal.
		if s.availableLocked(entry.SellerID) < entry.Net {
			entry.NeedsReconciliation = true
			entry.UpdatedAt = now.UTC()
			s.entries[entry.OrderID] = entry
			return domainerrors.ErrAlreadyWithdrawn
		}
	}

	entry.Status = entities.EntryStatusReversed
	entry.UpdatedAt = now.UTC()
	s.entries[entry.OrderID] = entry
	return nil
}

func (s *Store) MatureEntries(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matured := 0
	for orderID, entry := range s.entries {
		if entry.Status == entities.EntryStatusPending && !entry.AvailableAt.After(now.UTC()) {
			entry.Status = entities.EntryStatusAvailable
			entry.UpdatedAt = now.UTC()
			s.entries[orderID] = entry
			matured++
		}
	}
	return matured, nil
}

func (s *Store) Balance(_ context.Context, sellerID string) (entities.BalanceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balanceLocked(sellerID), nil
}

func (s *Store) balanceLocked(sellerID string) entities.BalanceSnapshot {
	snapshot := entities.BalanceSnapshot{SellerID: sellerID}
	for _, entry := range s.entries {
		if entry.SellerID != sellerID {
			continue
		}
		switch entry.Status {
		case entities.EntryStatusPending:
			snapshot.Pending += entry.Net
		case entities.EntryStatusAvailable:
			snapshot.Available += entry.Net
		}
	}
	for _, withdrawal := range s.withdrawals {
		if withdrawal.SellerID != sellerID {
			continue
		}
		switch withdrawal.Status {
		case entities.WithdrawalStatusPending, entities.WithdrawalStatusProcessing:
			snapshot.Available -= withdrawal.Amount
		case entities.WithdrawalStatusCompleted:
			snapshot.Available -= withdrawal.Amount
			snapshot.Withdrawn += withdrawal.Amount
		}
	}
	return snapshot
}

func (s *Store) availableLocked(sellerID string) int64 {
	return s.balanceLocked(sellerID).Available
}

func (s *Store) CreateWithdrawal(_ context.Context, withdrawal entities.Withdrawal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if withdrawal.Amount > s.availableLocked(withdrawal.SellerID) {
		return domainerrors.ErrInsufficientAvailable
	}
	s.withdrawals[withdrawal.WithdrawalID] = withdrawal
	return nil
}

func (s *Store) GetWithdrawal(_ context.Context, withdrawalID string) (entities.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	withdrawal, ok := s.withdrawals[strings.TrimSpace(withdrawalID)]
	if !ok {
		return entities.Withdrawal{}, domainerrors.ErrWithdrawalNotFound
	}
	return withdrawal, nil
}

func (s *Store) ListWithdrawals(_ context.Context, sellerID string, limit int, offset int) ([]entities.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	items := make([]entities.Withdrawal, 0)
	for _, withdrawal := range s.withdrawals {
		if withdrawal.SellerID == sellerID {
			items = append(items, withdrawal)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if offset >= len(items) {
		return []entities.Withdrawal{}, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return append([]entities.Withdrawal(nil), items[offset:end]...), nil
}

func (s *Store) FindPendingWithdrawals(_ context.Context, limit int) ([]entities.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	items := make([]entities.Withdrawal, 0)
	for _, withdrawal := range s.withdrawals {
		if withdrawal.Status == entities.WithdrawalStatusPending {
			items = append(items, withdrawal)
		}
		if len(items) >= limit {
			break
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) UpdateWithdrawalStatus(
	_ context.Context,
	withdrawalID string,
	from []entities.WithdrawalStatus,
	to entities.WithdrawalStatus,
	transferID string,
	failureReason string,
	updatedAt time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	withdrawal, ok := s.withdrawals[strings.TrimSpace(withdrawalID)]
	if !ok {
		return domainerrors.ErrWithdrawalNotFound
	}
	matched := false
	for _, status := range from {
		if withdrawal.Status == status {
			matched = true
			break
		}
	}
	if !matched {
		return domainerrors.ErrStatusConflict
	}

	withdrawal.Status = to
	if transferID != "" {
		withdrawal.TransferID = transferID
	}
	if failureReason != "" {
		withdrawal.FailureReason = failureReason
	}
	withdrawal.UpdatedAt = updatedAt.UTC()
	s.withdrawals[withdrawal.WithdrawalID] = withdrawal
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
