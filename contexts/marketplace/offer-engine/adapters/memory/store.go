package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"bazaar/contexts/marketplace/offer-engine/domain/entities"
	domainerrors "bazaar/contexts/marketplace/offer-engine/domain/errors"
)

type Store struct {
	mu     sync.RWMutex
	offers map[string]entities.Offer
}

func NewStore() *Store {
	return &Store{offers: make(map[string]entities.Offer)}
}

func (s *Store) CreateOffer(_ context.Context, offer entities.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := strings.TrimSpace(offer.OfferID)
	if id == "" {
		return domainerrors.ErrInvalidOffer
	}
	if _, exists := s.offers[id]; exists {
		return domainerrors.ErrStatusConflict
	}
	// One open offer per (buyer, listing); the scan runs under the same
	// lock as the insert so racing creates cannot both pass.
	for _, existing := range s.offers {
		if existing.BuyerID == offer.BuyerID &&
			existing.ListingID == offer.ListingID &&
			existing.Open() {
			return domainerrors.ErrOpenOfferExists
		}
	}
	s.offers[id] = offer
	return nil
}

func (s *Store) GetOffer(_ context.Context, offerID string) (entities.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	offer, ok := s.offers[strings.TrimSpace(offerID)]
	if !ok {
		return entities.Offer{}, domainerrors.ErrOfferNotFound
	}
	return offer, nil
}

func (s *Store) ListByBuyer(_ context.Context, buyerID string, limit int, offset int) ([]entities.Offer, error) {
	return s.list(func(o entities.Offer) bool { return o.BuyerID == buyerID }, limit, offset)
}

func (s *Store) ListBySeller(_ context.Context, sellerID string, limit int, offset int) ([]entities.Offer, error) {
	return s.list(func(o entities.Offer) bool { return o.SellerID == sellerID }, limit, offset)
}

func (s *Store) list(match func(entities.Offer) bool, limit int, offset int) ([]entities.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	items := make([]entities.Offer, 0)
	for _, offer := range s.offers {
		if match(offer) {
			items = append(items, offer)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if offset >= len(items) {
		return []entities.Offer{}, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return append([]entities.Offer(nil), items[offset:end]...), nil
}

func (s *Store) UpdateOfferStatus(
	_ context.Context,
	offerID string,
	from []entities.OfferStatus,
	to entities.OfferStatus,
	counterAmount int64,
	updatedAt time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	offer, ok := s.offers[strings.TrimSpace(offerID)]
	if !ok {
		return domainerrors.ErrOfferNotFound
	}
	matched := false
	for _, status := range from {
		if offer.Status == status {
			matched = true
			break
		}
	}
	if !matched {
		return domainerrors.ErrStatusConflict
	}

	offer.Status = to
	if counterAmount > 0 {
		offer.CounterAmount = counterAmount
	}
	offer.UpdatedAt = updatedAt.UTC()
	s.offers[offer.OfferID] = offer
	return nil
}

func (s *Store) ExpireOpenOffers(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for id, offer := range s.offers {
		if offer.Open() && now.UTC().After(offer.ExpiresAt) {
			offer.Status = entities.OfferStatusExpired
			offer.UpdatedAt = now.UTC()
			s.offers[id] = offer
			expired++
		}
	}
	return expired, nil
}

func (s *Store) OwnerOf(ctx context.Context, offerID string) (string, error) {
	offer, err := s.GetOffer(ctx, offerID)
	if err != nil {
		return "", err
	}
	return offer.BuyerID, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
