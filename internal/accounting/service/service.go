// Package service drafts and updates invoices. Invoice numbers and totals
// are always computed here; clients never send them.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"maps"

	"carehub/contracts/accounting"
	"carehub/internal/accounting/store"
	"carehub/internal/platform/metrics"
	"carehub/pkg/domain"
	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/envelope"
	"carehub/pkg/platform/middleware/requesttime"
	"carehub/pkg/schema"
)

// Store defines the persistence interface for invoices.
type Store interface {
	Create(ctx context.Context, inv *accounting.Invoice) error
	FindByID(ctx context.Context, id domain.ID) (*accounting.Invoice, error)
	List(ctx context.Context, f store.ListFilter) ([]accounting.Invoice, int, error)
	Update(ctx context.Context, inv *accounting.Invoice) error
}

// ListQuery is a validated offset list request. Page is 1-based.
type ListQuery struct {
	Page       int
	Limit      int
	Status     accounting.InvoiceStatus
	ResidentID domain.ID
}

// transitions lists the statuses each status may move to.
var transitions = map[accounting.InvoiceStatus][]accounting.InvoiceStatus{
	accounting.InvoiceDraft:  {accounting.InvoiceIssued, accounting.InvoiceVoid},
	accounting.InvoiceIssued: {accounting.InvoicePaid, accounting.InvoiceVoid},
}

type Option func(*Service)

// Service implements the invoice operations.
type Service struct {
	store   Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(store Store, opts ...Option) *Service {
	svc := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithLogger sets the logger instance for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Create drafts an invoice. Only draft and issued invoices can be created.
func (s *Service) Create(ctx context.Context, body map[string]any) (*accounting.Invoice, error) {
	inv, err := schema.Bind[accounting.Invoice](accounting.CreateInvoiceSchema, body)
	if err != nil {
		return nil, dErrors.PrefixIssues(err, "body")
	}
	if inv.Status != accounting.InvoiceDraft && inv.Status != accounting.InvoiceIssued {
		return nil, dErrors.NewValidation([]dErrors.Issue{{
			Path:    "body.status",
			Message: "new invoices must be draft or issued",
		}})
	}
	total, err := accounting.Total(inv.LineItems)
	if err != nil {
		return nil, dErrors.PrefixIssues(err, "body")
	}
	inv.TotalCents = total
	now := requesttime.Stamp(ctx)
	inv.CreatedAt, inv.UpdatedAt = now, now

	if err := s.store.Create(ctx, &inv); err != nil {
		return nil, s.translate(ctx, err, "failed to create invoice")
	}
	s.metrics.ObserveInvoice(string(inv.Status), inv.TotalCents)
	s.logger.InfoContext(ctx, "invoice created", "invoice_id", inv.ID.String(), "number", inv.Number)
	return &inv, nil
}

// Get fetches one invoice.
func (s *Service) Get(ctx context.Context, id domain.ID) (*accounting.Invoice, error) {
	inv, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(ctx, err, "failed to read invoice")
	}
	return inv, nil
}

// List returns one offset page and the overall match count.
func (s *Service) List(ctx context.Context, q ListQuery) ([]accounting.Invoice, int, error) {
	limit := envelope.ClampLimit(q.Limit)
	page := max(q.Page, 1)
	items, total, err := s.store.List(ctx, store.ListFilter{
		Status:     q.Status,
		ResidentID: q.ResidentID,
		Offset:     (page - 1) * limit,
		Limit:      limit,
	})
	if err != nil {
		return nil, 0, s.translate(ctx, err, "failed to list invoices")
	}
	return items, total, nil
}

// Update applies a partial update. Paid and void invoices are closed; line
// item changes recompute the total.
func (s *Service) Update(ctx context.Context, id domain.ID, patch map[string]any) (*accounting.Invoice, error) {
	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(ctx, err, "failed to read invoice")
	}
	if _, open := transitions[current.Status]; !open {
		return nil, dErrors.Newf(dErrors.CodeConflict, "%s invoices cannot be changed", current.Status)
	}
	if raw, ok := patch["status"].(string); ok && raw != string(current.Status) {
		next := accounting.InvoiceStatus(raw)
		if !canMove(current.Status, next) {
			return nil, dErrors.Newf(dErrors.CodeConflict, "invoice cannot move from %s to %s", current.Status, next)
		}
	}

	record, err := toRecord(current)
	if err != nil {
		return nil, err
	}
	maps.Copy(record, patch)
	record[schema.FieldUpdatedAt] = requesttime.Stamp(ctx)

	updated, err := schema.Bind[accounting.Invoice](accounting.InvoiceSchema, record)
	if err != nil {
		return nil, dErrors.PrefixIssues(err, "body")
	}
	total, err := accounting.Total(updated.LineItems)
	if err != nil {
		return nil, dErrors.PrefixIssues(err, "body")
	}
	updated.TotalCents = total
	if err := s.store.Update(ctx, &updated); err != nil {
		return nil, s.translate(ctx, err, "failed to update invoice")
	}
	return &updated, nil
}

func canMove(from, to accounting.InvoiceStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *Service) translate(ctx context.Context, err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "invoice not found")
	}
	s.logger.ErrorContext(ctx, msg, "error", err)
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func toRecord(inv *accounting.Invoice) (map[string]any, error) {
	b, err := json.Marshal(inv)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "encode invoice")
	}
	doc, err := schema.DecodeJSON(b)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode invoice")
	}
	record, _ := doc.(map[string]any)
	return record, nil
}
