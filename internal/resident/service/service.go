// Package service applies the resident lifecycle rules on top of a store:
// admission, partial updates, discharge and removal. Store sentinels are
// translated into coded errors here and nowhere else.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"maps"

	"carehub/contracts/resident"
	"carehub/internal/platform/metrics"
	"carehub/internal/resident/store"
	"carehub/internal/sentinel"
	"carehub/pkg/domain"
	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/envelope"
	"carehub/pkg/platform/middleware/requesttime"
	"carehub/pkg/schema"
)

// Store defines the persistence interface for residents.
// Error Contract:
// - FindByID, Update and Delete return store.ErrNotFound for unknown ids
// - Create and Update return store.ErrRoomTaken when the room is occupied
type Store interface {
	Create(ctx context.Context, r *resident.Resident) error
	FindByID(ctx context.Context, id domain.ID) (*resident.Resident, error)
	List(ctx context.Context, f store.ListFilter) (store.Page, error)
	Update(ctx context.Context, r *resident.Resident) error
	Delete(ctx context.Context, id domain.ID) error
}

// ListQuery is a validated list request.
type ListQuery struct {
	After  domain.ID
	Limit  int
	Status resident.Status
}

// ListResult is one page. Next is set only when more residents follow.
type ListResult struct {
	Items []resident.Resident
	Next  *domain.ID
}

type Option func(*Service)

// Service implements the resident operations.
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

// Create admits a resident from a body that already passed the create schema.
func (s *Service) Create(ctx context.Context, body map[string]any) (*resident.Resident, error) {
	r, err := schema.Bind[resident.Resident](resident.CreateSchema, body)
	if err != nil {
		return nil, dErrors.PrefixIssues(err, "body")
	}
	if r.Status == resident.StatusDischarged {
		return nil, dErrors.NewValidation([]dErrors.Issue{{
			Path:    "body.status",
			Message: "a resident cannot be admitted as discharged",
		}})
	}
	now := requesttime.Stamp(ctx)
	r.CreatedAt, r.UpdatedAt = now, now

	if err := s.store.Create(ctx, &r); err != nil {
		return nil, s.translate(ctx, err, "failed to create resident")
	}
	s.metrics.IncrementAdmitted(string(r.CareLevel))
	s.logger.InfoContext(ctx, "resident admitted", "resident_id", r.ID.String())
	return &r, nil
}

// Get fetches one resident.
func (s *Service) Get(ctx context.Context, id domain.ID) (*resident.Resident, error) {
	r, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(ctx, err, "failed to read resident")
	}
	return r, nil
}

// List returns residents ordered by id after q.After.
func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	page, err := s.store.List(ctx, store.ListFilter{
		After:  q.After,
		Limit:  envelope.ClampLimit(q.Limit),
		Status: q.Status,
	})
	if err != nil {
		return nil, s.translate(ctx, err, "failed to list residents")
	}
	res := &ListResult{Items: page.Items}
	if page.HasMore && len(page.Items) > 0 {
		next := page.Items[len(page.Items)-1].ID
		res.Next = &next
	}
	return res, nil
}

// Update overlays patch onto the stored resident and revalidates the whole
// record, so refinements spanning several fields still hold.
func (s *Service) Update(ctx context.Context, id domain.ID, patch map[string]any) (*resident.Resident, error) {
	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(ctx, err, "failed to read resident")
	}
	if status, ok := patch["status"]; ok && status != string(current.Status) {
		if status == string(resident.StatusDischarged) {
			return nil, dErrors.New(dErrors.CodeConflict, "use the discharge operation to discharge a resident")
		}
		if current.Status == resident.StatusDischarged {
			return nil, dErrors.New(dErrors.CodeConflict, "a discharged resident cannot change status")
		}
	}

	record, err := toRecord(current)
	if err != nil {
		return nil, err
	}
	maps.Copy(record, patch)
	record[schema.FieldUpdatedAt] = requesttime.Stamp(ctx)

	updated, err := schema.Bind[resident.Resident](resident.Schema, record)
	if err != nil {
		return nil, dErrors.PrefixIssues(err, "body")
	}
	if err := s.store.Update(ctx, &updated); err != nil {
		return nil, s.translate(ctx, err, "failed to update resident")
	}
	return &updated, nil
}

// Discharge records the discharge date and frees the resident's room.
func (s *Service) Discharge(ctx context.Context, id domain.ID, in resident.DischargeInput) (*resident.Resident, error) {
	r, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(ctx, err, "failed to read resident")
	}
	if r.Status == resident.StatusDischarged {
		return nil, dErrors.New(dErrors.CodeConflict, "resident is already discharged")
	}

	on := in.DischargeDate
	r.DischargeDate = &on
	r.Status = resident.StatusDischarged
	r.UpdatedAt = requesttime.Stamp(ctx)
	if in.Reason != "" {
		if r.Metadata == nil {
			r.Metadata = domain.JSONPayload{}
		}
		r.Metadata["discharge_reason"] = in.Reason
	}
	if _, err := schema.Validate(resident.Schema, r); err != nil {
		return nil, dErrors.PrefixIssues(err, "body")
	}

	if err := s.store.Update(ctx, r); err != nil {
		return nil, s.translate(ctx, err, "failed to discharge resident")
	}
	s.metrics.IncrementDischarged(string(r.CareLevel))
	s.logger.InfoContext(ctx, "resident discharged", "resident_id", r.ID.String())
	return r, nil
}

// Delete removes a resident record.
func (s *Service) Delete(ctx context.Context, id domain.ID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return s.translate(ctx, err, "failed to delete resident")
	}
	return nil
}

func (s *Service) translate(ctx context.Context, err error, msg string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "resident not found")
	case errors.Is(err, store.ErrRoomTaken):
		s.metrics.IncrementRoomConflicts()
		return dErrors.Wrap(err, dErrors.CodeConflict, "room is already occupied")
	case errors.Is(err, sentinel.ErrCorruptRow):
		// The row's own validation issues must not reach the client as a 400.
		s.logger.ErrorContext(ctx, msg, "error", err)
		return &dErrors.Error{Code: dErrors.CodeInternal, Message: msg, Err: err}
	default:
		s.logger.ErrorContext(ctx, msg, "error", err)
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

// toRecord renders r in the generic form the schema layer validates.
func toRecord(r *resident.Resident) (map[string]any, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "encode resident")
	}
	doc, err := schema.DecodeJSON(b)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode resident")
	}
	record, _ := doc.(map[string]any)
	return record, nil
}
