// Package store keeps invoices in memory. Invoices are listed newest first
// with offset pagination.
package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"carehub/contracts/accounting"
	"carehub/internal/sentinel"
	"carehub/pkg/domain"
)

// ErrNotFound is returned when an invoice is not found.
var ErrNotFound = sentinel.ErrNotFound

// firstID matches the resident sequence so invoice ids also exceed 2^53.
const firstID uint64 = 1<<53 + 1

// ListFilter selects one offset page of invoices.
type ListFilter struct {
	Status     accounting.InvoiceStatus
	ResidentID domain.ID
	Offset     int
	Limit      int
}

// InMemory is a concurrency-safe invoice store.
type InMemory struct {
	mu       sync.RWMutex
	invoices map[string]*accounting.Invoice
	order    []string // insertion order, oldest first
	nextID   uint64
	nextNum  int
}

// NewInMemory creates an empty invoice store.
func NewInMemory() *InMemory {
	return &InMemory{
		invoices: make(map[string]*accounting.Invoice),
		nextID:   firstID,
		nextNum:  1,
	}
}

// Create assigns the id and invoice number, then stores a copy of inv.
func (s *InMemory) Create(_ context.Context, inv *accounting.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := domain.EncodeID(s.nextID)
	if err != nil {
		return fmt.Errorf("assign invoice id: %w", err)
	}
	s.nextID++
	inv.ID = id
	inv.Number = fmt.Sprintf("INV-%06d", s.nextNum)
	s.nextNum++
	s.invoices[id.String()] = clone(inv)
	s.order = append(s.order, id.String())
	return nil
}

// FindByID retrieves an invoice by id.
func (s *InMemory) FindByID(_ context.Context, id domain.ID) (*accounting.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if inv, ok := s.invoices[id.String()]; ok {
		return clone(inv), nil
	}
	return nil, ErrNotFound
}

// List returns one page and the number of invoices matching f overall.
func (s *InMemory) List(_ context.Context, f ListFilter) ([]accounting.Invoice, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*accounting.Invoice
	for _, key := range slices.Backward(s.order) {
		inv := s.invoices[key]
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		if !f.ResidentID.IsNil() && inv.ResidentID != f.ResidentID {
			continue
		}
		matched = append(matched, inv)
	}

	total := len(matched)
	start := min(max(f.Offset, 0), total)
	end := min(start+f.Limit, total)
	page := make([]accounting.Invoice, 0, end-start)
	for _, inv := range matched[start:end] {
		page = append(page, *clone(inv))
	}
	return page, total, nil
}

// Update replaces a stored invoice.
func (s *InMemory) Update(_ context.Context, inv *accounting.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[inv.ID.String()]; !ok {
		return ErrNotFound
	}
	s.invoices[inv.ID.String()] = clone(inv)
	return nil
}

func clone(inv *accounting.Invoice) *accounting.Invoice {
	c := *inv
	c.LineItems = slices.Clone(inv.LineItems)
	return &c
}
