package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/trace/noop"

	"carehub/contracts/accounting"
	"carehub/internal/accounting/service"
	"carehub/internal/accounting/store"
	"carehub/internal/platform/metrics"
	httptransport "carehub/internal/transport/http"
	"carehub/pkg/contract"
	dErrors "carehub/pkg/domain-errors"
)

// InvoiceFlowSuite exercises the invoice handlers against the in-memory
// store through the real binder, so request and response schemas are both
// enforced.
type InvoiceFlowSuite struct {
	suite.Suite
	router  http.Handler
	metrics *metrics.Metrics
}

func TestInvoiceFlowSuite(t *testing.T) {
	suite.Run(t, new(InvoiceFlowSuite))
}

func (s *InvoiceFlowSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.metrics = metrics.New(prometheus.NewRegistry())
	svc := service.New(store.NewInMemory(), service.WithLogger(logger), service.WithMetrics(s.metrics))

	tree, err := contract.MergeRouters(accounting.Router())
	s.Require().NoError(err)
	binder := httptransport.NewBinder(tree, logger,
		httptransport.WithTracer(noop.NewTracerProvider().Tracer("test")),
		httptransport.WithResponseVerification(true),
	)
	s.Require().NoError(New(svc).Register(binder))
	s.Equal([]string{"accounting.get_account", "accounting.list_ledger_entries"}, binder.Unbound())
	s.router = httptransport.NewRouter(httptransport.RouterConfig{Binder: binder, Logger: logger})
}

func (s *InvoiceFlowSuite) do(method, path string, body any) (int, map[string]any) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequestWithContext(context.Background(), method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var out map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func invoiceBody() map[string]any {
	return map[string]any{
		"resident_id": "9007199254740993",
		"issue_date":  "2025-03-01",
		"due_date":    "2025-03-31",
		"line_items": []any{
			map[string]any{"description": "March board", "quantity": 1, "unit_price_cents": 350000},
			map[string]any{"description": "Physiotherapy", "quantity": 4, "unit_price_cents": 4500},
		},
		// Server-owned members are ignored on input.
		"number":      "INV-999999",
		"total_cents": 1,
	}
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func (s *InvoiceFlowSuite) create() map[string]any {
	status, body := s.do(http.MethodPost, "/invoices", invoiceBody())
	s.Require().Equal(http.StatusCreated, status, body)
	return body["data"].(map[string]any)
}

func (s *InvoiceFlowSuite) TestCreateAssignsNumberAndTotal() {
	inv := s.create()

	s.Equal("INV-000001", inv["number"])
	s.Equal(float64(368000), inv["total_cents"])
	s.Equal("draft", inv["status"])
	s.Equal("9007199254740993", inv["id"])
	s.Nil(inv["notes"])
	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.InvoicesCreated.WithLabelValues("draft")))
}

func (s *InvoiceFlowSuite) TestCreateRejectsInvalidBodies() {
	s.Run("due before issue", func() {
		body := invoiceBody()
		body["due_date"] = "2025-02-01"
		status, resp := s.do(http.MethodPost, "/invoices", body)
		s.Equal(http.StatusBadRequest, status)
		s.Equal(string(dErrors.CodeValidation), errorCode(resp))
		details := resp["error"].(map[string]any)["details"].([]any)
		s.Equal("body.due_date", details[0].(map[string]any)["path"])
	})

	s.Run("no line items", func() {
		body := invoiceBody()
		body["line_items"] = []any{}
		status, _ := s.do(http.MethodPost, "/invoices", body)
		s.Equal(http.StatusBadRequest, status)
	})

	s.Run("paid on creation", func() {
		body := invoiceBody()
		body["status"] = "paid"
		status, resp := s.do(http.MethodPost, "/invoices", body)
		s.Equal(http.StatusBadRequest, status)
		s.Equal(string(dErrors.CodeValidation), errorCode(resp))
	})
}

func (s *InvoiceFlowSuite) TestListIsAnOffsetPage() {
	for i := 0; i < 3; i++ {
		s.create()
	}

	status, body := s.do(http.MethodGet, "/invoices?page=2&limit=2", nil)
	s.Require().Equal(http.StatusOK, status, body)
	items := body["data"].([]any)
	s.Require().Len(items, 1)
	s.Equal("INV-000001", items[0].(map[string]any)["number"])
	s.Equal(map[string]any{"total": float64(3), "page": float64(2), "limit": float64(2), "totalPages": float64(2)}, body["meta"])

	status, body = s.do(http.MethodGet, "/invoices?status=paid", nil)
	s.Require().Equal(http.StatusOK, status, body)
	s.Empty(body["data"])
}

func (s *InvoiceFlowSuite) TestStatusLifecycle() {
	id := s.create()["id"].(string)

	status, body := s.do(http.MethodPatch, "/invoices/"+id, map[string]any{"status": "paid"})
	s.Equal(http.StatusConflict, status)
	s.Equal(string(dErrors.CodeConflict), errorCode(body))

	status, body = s.do(http.MethodPatch, "/invoices/"+id, map[string]any{
		"status":     "issued",
		"line_items": []any{map[string]any{"description": "March board", "quantity": 2, "unit_price_cents": 1000}},
	})
	s.Require().Equal(http.StatusOK, status, body)
	s.Equal("issued", body["data"].(map[string]any)["status"])
	s.Equal(float64(2000), body["data"].(map[string]any)["total_cents"])
	s.Equal("INV-000001", body["data"].(map[string]any)["number"])

	status, _ = s.do(http.MethodPatch, "/invoices/"+id, map[string]any{"status": "paid"})
	s.Require().Equal(http.StatusOK, status)

	status, body = s.do(http.MethodPatch, "/invoices/"+id, map[string]any{"notes": "late fee waived"})
	s.Equal(http.StatusConflict, status)
	s.Equal(string(dErrors.CodeConflict), errorCode(body))
}

func (s *InvoiceFlowSuite) TestGet() {
	id := s.create()["id"].(string)

	status, body := s.do(http.MethodGet, "/invoices/"+id, nil)
	s.Require().Equal(http.StatusOK, status, body)
	s.Equal(id, body["data"].(map[string]any)["id"])

	status, body = s.do(http.MethodGet, "/invoices/1", nil)
	s.Equal(http.StatusNotFound, status)
	s.Equal(string(dErrors.CodeNotFound), errorCode(body))
}

func (s *InvoiceFlowSuite) TestUnboundOperationsAnswerNotImplemented() {
	status, body := s.do(http.MethodGet, "/accounts/1", nil)
	s.Equal(http.StatusNotImplemented, status)
	s.Equal(string(dErrors.CodeNotImplemented), errorCode(body))
}
