package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bazaar/contexts/marketplace/listing-registry/domain/entities"
	domainerrors "bazaar/contexts/marketplace/listing-registry/domain/errors"

	"github.com/google/uuid"
)

type Store struct {
	mu       sync.RWMutex
	listings map[string]entities.Listing
}

func NewStore() *Store {
	return &Store{listings: make(map[string]entities.Listing)}
}

func (s *Store) CreateListing(_ context.Context, listing entities.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := strings.TrimSpace(listing.ListingID)
	if id == "" {
		return domainerrors.ErrInvalidListing
	}
	if _, exists := s.listings[id]; exists {
		return domainerrors.ErrStatusConflict
	}
	s.listings[id] = listing
	return nil
}

func (s *Store) GetListing(_ context.Context, listingID string) (entities.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listing, ok := s.listings[strings.TrimSpace(listingID)]
	if !ok {
		return entities.Listing{}, domainerrors.ErrListingNotFound
	}
	return listing, nil
}

func (s *Store) ListBySeller(_ context.Context, sellerID string, limit int, offset int) ([]entities.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	items := make([]entities.Listing, 0)
	for _, listing := range s.listings {
		if listing.SellerID == sellerID {
			items = append(items, listing)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if offset >= len(items) {
		return []entities.Listing{}, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return append([]entities.Listing(nil), items[offset:end]...), nil
}

func (s *Store) UpdateListingFields(_ context.Context, listing entities.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listings[listing.ListingID]; !ok {
		return domainerrors.ErrListingNotFound
	}
	s.listings[listing.ListingID] = listing
	return nil
}

func (s *Store) UpdateListingStatus(
	_ context.Context,
	listingID string,
	from []entities.ListingStatus,
	to entities.ListingStatus,
	updatedAt time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, ok := s.listings[strings.TrimSpace(listingID)]
	if !ok {
		return domainerrors.ErrListingNotFound
	}
	matched := false
	for _, status := range from {
		if listing.Status == status {
			matched = true
			break
		}
	}
	if !matched {
		return domainerrors.ErrStatusConflict
	}

	listing.Status = to
	listing.UpdatedAt = updatedAt.UTC()
	s.listings[listing.ListingID] = listing
	return nil
}

func (s *Store) OwnerOf(ctx context.Context, listingID string) (string, error) {
	listing, err := s.GetListing(ctx, listingID)
	if err != nil {
		return "", err
	}
	return listing.SellerID, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
