// Package handler serves the invoice operations of the accounting router.
// Account and ledger operations have no backing store yet and answer 501.
package handler

import (
	"context"
	"net/http"

	"carehub/contracts/accounting"
	"carehub/internal/accounting/service"
	httptransport "carehub/internal/transport/http"
	"carehub/pkg/contract"
	"carehub/pkg/domain"
	"carehub/pkg/envelope"
	"carehub/pkg/platform/middleware/requesttime"
)

// Service defines the interface for invoice operations.
type Service interface {
	Create(ctx context.Context, body map[string]any) (*accounting.Invoice, error)
	Get(ctx context.Context, id domain.ID) (*accounting.Invoice, error)
	List(ctx context.Context, q service.ListQuery) ([]accounting.Invoice, int, error)
	Update(ctx context.Context, id domain.ID, patch map[string]any) (*accounting.Invoice, error)
}

type Handler struct {
	service Service
}

func New(svc Service) *Handler {
	return &Handler{service: svc}
}

// Register binds the invoice operations on b.
func (h *Handler) Register(b *httptransport.Binder) error {
	routes := map[string]httptransport.Handler{
		accounting.OpListInvoices:  h.HandleListInvoices,
		accounting.OpGetInvoice:    h.HandleGetInvoice,
		accounting.OpCreateInvoice: h.HandleCreateInvoice,
		accounting.OpUpdateInvoice: h.HandleUpdateInvoice,
	}
	for name, fn := range routes {
		if err := b.Handle(accounting.Domain+"."+name, fn); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) HandleListInvoices(ctx context.Context, req *contract.Request) (httptransport.Response, error) {
	q := service.ListQuery{
		Page:   req.QueryInt("page"),
		Limit:  req.QueryInt("limit"),
		Status: accounting.InvoiceStatus(req.QueryString("status")),
	}
	if id, ok := req.Query["resident_id"].(domain.ID); ok {
		q.ResidentID = id
	}
	items, total, err := h.service.List(ctx, q)
	if err != nil {
		return httptransport.Response{}, err
	}
	return httptransport.RespondEnvelope(http.StatusOK,
		envelope.WrapOffsetPage(items, total, q.Page, q.Limit, requesttime.Now(ctx))), nil
}

func (h *Handler) HandleGetInvoice(ctx context.Context, req *contract.Request) (httptransport.Response, error) {
	inv, err := h.service.Get(ctx, req.PathID("id"))
	if err != nil {
		return httptransport.Response{}, err
	}
	return httptransport.Respond(ctx, http.StatusOK, inv, ""), nil
}

func (h *Handler) HandleCreateInvoice(ctx context.Context, req *contract.Request) (httptransport.Response, error) {
	inv, err := h.service.Create(ctx, req.BodyMap())
	if err != nil {
		return httptransport.Response{}, err
	}
	return httptransport.Respond(ctx, http.StatusCreated, inv, "invoice created"), nil
}

func (h *Handler) HandleUpdateInvoice(ctx context.Context, req *contract.Request) (httptransport.Response, error) {
	inv, err := h.service.Update(ctx, req.PathID("id"), req.BodyMap())
	if err != nil {
		return httptransport.Response{}, err
	}
	return httptransport.Respond(ctx, http.StatusOK, inv, ""), nil
}
