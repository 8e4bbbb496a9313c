package store

import (
	"context"
	"fmt"
	"maps"
	"math/big"
	"slices"
	"sync"

	"carehub/contracts/resident"
	"carehub/pkg/domain"
)

// InMemory stores residents in memory for the demo environment.
type InMemory struct {
	mu        sync.RWMutex
	residents map[string]*resident.Resident
	next      *big.Int
}

// NewInMemory creates an in-memory resident store.
func NewInMemory() *InMemory {
	first, _ := new(big.Int).SetString(FirstID, 10)
	return &InMemory{
		residents: make(map[string]*resident.Resident),
		next:      first,
	}
}

// Create assigns the next id to r and stores a copy.
func (s *InMemory) Create(_ context.Context, r *resident.Resident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkRoom(r, ""); err != nil {
		return err
	}
	id, err := domain.EncodeID(new(big.Int).Set(s.next))
	if err != nil {
		return fmt.Errorf("assign resident id: %w", err)
	}
	s.next.Add(s.next, big.NewInt(1))
	r.ID = id
	s.residents[id.String()] = clone(r)
	return nil
}

// FindByID retrieves a resident by id.
func (s *InMemory) FindByID(_ context.Context, id domain.ID) (*resident.Resident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.residents[id.String()]; ok {
		return clone(r), nil
	}
	return nil, ErrNotFound
}

// List returns up to f.Limit residents with an id greater than f.After.
func (s *InMemory) List(_ context.Context, f ListFilter) (Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*resident.Resident, 0, len(s.residents))
	for _, r := range s.residents {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if !f.After.IsNil() && r.ID.BigInt().Cmp(f.After.BigInt()) <= 0 {
			continue
		}
		matched = append(matched, r)
	}
	slices.SortFunc(matched, func(a, b *resident.Resident) int {
		return a.ID.BigInt().Cmp(b.ID.BigInt())
	})

	page := Page{HasMore: len(matched) > f.Limit}
	if page.HasMore {
		matched = matched[:f.Limit]
	}
	page.Items = make([]resident.Resident, len(matched))
	for i, r := range matched {
		page.Items[i] = *clone(r)
	}
	return page, nil
}

// Update replaces a stored resident.
func (s *InMemory) Update(_ context.Context, r *resident.Resident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := r.ID.String()
	if _, ok := s.residents[key]; !ok {
		return ErrNotFound
	}
	if err := s.checkRoom(r, key); err != nil {
		return err
	}
	s.residents[key] = clone(r)
	return nil
}

// Delete removes a resident.
func (s *InMemory) Delete(_ context.Context, id domain.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.residents[id.String()]; !ok {
		return ErrNotFound
	}
	delete(s.residents, id.String())
	return nil
}

// checkRoom must be called with the write lock held.
func (s *InMemory) checkRoom(r *resident.Resident, self string) error {
	if !occupies(r) {
		return nil
	}
	for key, other := range s.residents {
		if key != self && occupies(other) && *other.RoomNumber == *r.RoomNumber {
			return fmt.Errorf("room %s is occupied: %w", *r.RoomNumber, ErrRoomTaken)
		}
	}
	return nil
}

func clone(r *resident.Resident) *resident.Resident {
	c := *r
	c.EmergencyContacts = slices.Clone(r.EmergencyContacts)
	c.Metadata = maps.Clone(r.Metadata)
	return &c
}
