package memory

import (
	"context"
	"sync"
	"time"

	domainerrors "bazaar/contexts/identity-access/access-guard/domain/errors"
	"bazaar/contexts/identity-access/access-guard/ports"
)

// Store is an in-memory identity store and resource directory used by
// tests and by the in-memory module wiring.
type Store struct {
	mu         sync.RWMutex
	identities map[string]ports.Identity
	owners     map[string]map[string]string
}

func NewStore() *Store {
	return &Store{
		identities: make(map[string]ports.Identity),
		owners:     make(map[string]map[string]string),
	}
}

func (s *Store) PutIdentity(identity ports.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[identity.UserID] = identity
}

func (s *Store) FindByID(_ context.Context, userID string) (ports.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.identities[userID]
	if !ok {
		return ports.Identity{}, domainerrors.ErrNotFound
	}
	return identity, nil
}

func (s *Store) PutResource(resourceType string, resourceID string, ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.owners[resourceType] == nil {
		s.owners[resourceType] = make(map[string]string)
	}
	s.owners[resourceType][resourceID] = ownerID
}

func (s *Store) OwnerOf(_ context.Context, resourceType string, resourceID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID, ok := s.owners[resourceType]
	if !ok {
		return "", domainerrors.ErrUnknownResource
	}
	ownerID, ok := byID[resourceID]
	if !ok {
		return "", domainerrors.ErrNotFound
	}
	return ownerID, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}
