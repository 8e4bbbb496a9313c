// Package handler serves the resident operations of the contract tree.
// Request shapes are enforced by the binder before these functions run.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"carehub/contracts/resident"
	"carehub/internal/resident/service"
	httptransport "carehub/internal/transport/http"
	"carehub/pkg/contract"
	"carehub/pkg/domain"
	"carehub/pkg/envelope"
	"carehub/pkg/platform/middleware/requesttime"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the interface for resident operations.
type Service interface {
	Create(ctx context.Context, body map[string]any) (*resident.Resident, error)
	Get(ctx context.Context, id domain.ID) (*resident.Resident, error)
	List(ctx context.Context, q service.ListQuery) (*service.ListResult, error)
	Update(ctx context.Context, id domain.ID, patch map[string]any) (*resident.Resident, error)
	Discharge(ctx context.Context, id domain.ID, in resident.DischargeInput) (*resident.Resident, error)
	Delete(ctx context.Context, id domain.ID) error
}

// Handler handles resident endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates a resident handler.
func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register binds every resident operation on b.
func (h *Handler) Register(b *httptransport.Binder) error {
	routes := map[string]httptransport.Handler{
		resident.OpList:      h.HandleList,
		resident.OpGet:       h.HandleGet,
		resident.OpCreate:    h.HandleCreate,
		resident.OpUpdate:    h.HandleUpdate,
		resident.OpDischarge: h.HandleDischarge,
		resident.OpDelete:    h.HandleDelete,
	}
	for name, fn := range routes {
		if err := b.Handle(resident.Domain+"."+name, fn); err != nil {
			return err
		}
	}
	return nil
}

// HandleList serves GET /residents as a cursor page ordered by id.
func (h *Handler) HandleList(ctx context.Context, req *contract.Request) (httptransport.Response, error) {
	q := service.ListQuery{
		Limit:  req.QueryInt("limit"),
		Status: resident.Status(req.QueryString("status")),
	}
	if cursor := req.QueryString("cursor"); cursor != "" {
		after, err := envelope.DecodeCursor(cursor)
		if err != nil {
			return httptransport.Response{}, err
		}
		q.After = after
	}

	res, err := h.service.List(ctx, q)
	if err != nil {
		return httptransport.Response{}, err
	}
	var next *string
	if res.Next != nil {
		c := envelope.EncodeCursor(*res.Next)
		next = &c
	}
	return httptransport.RespondEnvelope(http.StatusOK,
		envelope.WrapCursorPage(res.Items, next, q.Limit, requesttime.Now(ctx))), nil
}

func (h *Handler) HandleGet(ctx context.Context, req *contract.Request) (httptransport.Response, error) {
	r, err := h.service.Get(ctx, req.PathID("id"))
	if err != nil {
		return httptransport.Response{}, err
	}
	return httptransport.Respond(ctx, http.StatusOK, r, ""), nil
}

func (h *Handler) HandleCreate(ctx context.Context, req *contract.Request) (httptransport.Response, error) {
	r, err := h.service.Create(ctx, req.BodyMap())
	if err != nil {
		return httptransport.Response{}, err
	}
	return httptransport.Respond(ctx, http.StatusCreated, r, "resident admitted"), nil
}

func (h *Handler) HandleUpdate(ctx context.Context, req *contract.Request) (httptransport.Response, error) {
	r, err := h.service.Update(ctx, req.PathID("id"), req.BodyMap())
	if err != nil {
		return httptransport.Response{}, err
	}
	return httptransport.Respond(ctx, http.StatusOK, r, ""), nil
}

func (h *Handler) HandleDischarge(ctx context.Context, req *contract.Request) (httptransport.Response, error) {
	body := req.BodyMap()
	in := resident.DischargeInput{}
	in.DischargeDate, _ = body["discharge_date"].(string)
	in.Reason, _ = body["reason"].(string)

	r, err := h.service.Discharge(ctx, req.PathID("id"), in)
	if err != nil {
		return httptransport.Response{}, err
	}
	return httptransport.Respond(ctx, http.StatusOK, r, "resident discharged"), nil
}

// HandleDelete answers 200 with null data.
func (h *Handler) HandleDelete(ctx context.Context, req *contract.Request) (httptransport.Response, error) {
	if err := h.service.Delete(ctx, req.PathID("id")); err != nil {
		return httptransport.Response{}, err
	}
	return httptransport.Respond[any](ctx, http.StatusOK, nil, "resident deleted"), nil
}
