package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"carehub/contracts/accounting"
	"carehub/internal/accounting/store"
	"carehub/internal/platform/metrics"
	"carehub/pkg/domain"
	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/platform/middleware/requesttime"
	"carehub/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.InMemory
	metrics *metrics.Metrics
	svc     *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requesttime.WithTime(context.Background(), testutil.FixedNow)
	s.store = store.NewInMemory()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.svc = New(s.store,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
	)
}

func draft() map[string]any {
	return map[string]any{
		"resident_id": "9007199254740993",
		"issue_date":  "2025-03-01",
		"due_date":    "2025-03-31",
		"line_items": []any{
			map[string]any{"description": "Room", "quantity": 2, "unit_price_cents": 1000},
		},
	}
}

func (s *ServiceSuite) TestCreate() {
	s.Run("computes the total and stamps audit fields", func() {
		inv, err := s.svc.Create(s.ctx, draft())
		s.Require().NoError(err)
		s.Equal(int64(2000), inv.TotalCents)
		s.Equal(accounting.InvoiceDraft, inv.Status)
		s.Equal(domain.TimestampFromTime(testutil.FixedNow), inv.CreatedAt)
		s.NotEmpty(inv.Number)
		s.Equal(2000.0, promtestutil.ToFloat64(s.metrics.InvoicedCentsTotal))
	})

	s.Run("issues are anchored under body", func() {
		body := draft()
		delete(body, "issue_date")
		_, err := s.svc.Create(s.ctx, body)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal("body.issue_date", dErrors.IssuesOf(err)[0].Path)
	})

	s.Run("void on creation is rejected", func() {
		body := draft()
		body["status"] = "void"
		_, err := s.svc.Create(s.ctx, body)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestLineAmountsAreBounded() {
	s.Run("create rejects amounts beyond the line bounds", func() {
		body := draft()
		body["line_items"] = []any{
			map[string]any{"description": "Room", "quantity": 10_000_000_000, "unit_price_cents": 10_000_000_000},
		}
		_, err := s.svc.Create(s.ctx, body)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		paths := make([]string, 0, 2)
		for _, is := range dErrors.IssuesOf(err) {
			paths = append(paths, is.Path)
		}
		s.ElementsMatch([]string{"body.line_items.0.quantity", "body.line_items.0.unit_price_cents"}, paths)
	})

	s.Run("update rejects amounts beyond the line bounds", func() {
		inv, err := s.svc.Create(s.ctx, draft())
		s.Require().NoError(err)

		_, err = s.svc.Update(s.ctx, inv.ID, map[string]any{
			"line_items": []any{
				map[string]any{"description": "Room", "quantity": 1, "unit_price_cents": accounting.MaxUnitPriceCents + 1},
			},
		})
		s.Require().Error(err)
		s.Equal("body.line_items.0.unit_price_cents", dErrors.IssuesOf(err)[0].Path)

		stored, err := s.svc.Get(s.ctx, inv.ID)
		s.Require().NoError(err)
		s.Equal(int64(2000), stored.TotalCents)
	})

	s.Run("largest allowed invoice fits", func() {
		items := make([]any, 50)
		for i := range items {
			items[i] = map[string]any{
				"description":      "Room",
				"quantity":         accounting.MaxLineQuantity,
				"unit_price_cents": accounting.MaxUnitPriceCents,
			}
		}
		body := draft()
		body["line_items"] = items
		inv, err := s.svc.Create(s.ctx, body)
		s.Require().NoError(err)
		s.Equal(int64(50*accounting.MaxLineQuantity*accounting.MaxUnitPriceCents), inv.TotalCents)
	})
}

func (s *ServiceSuite) TestUpdateTransitions() {
	inv, err := s.svc.Create(s.ctx, draft())
	s.Require().NoError(err)

	_, err = s.svc.Update(s.ctx, inv.ID, map[string]any{"status": "paid"})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict), "draft cannot be paid directly")

	updated, err := s.svc.Update(s.ctx, inv.ID, map[string]any{"status": "issued"})
	s.Require().NoError(err)
	s.Equal(accounting.InvoiceIssued, updated.Status)
	s.Equal(inv.Number, updated.Number)

	updated, err = s.svc.Update(s.ctx, inv.ID, map[string]any{
		"status": "paid",
		"line_items": []any{
			map[string]any{"description": "Room", "quantity": 3, "unit_price_cents": 1000},
		},
	})
	s.Require().NoError(err)
	s.Equal(accounting.InvoicePaid, updated.Status)
	s.Equal(int64(3000), updated.TotalCents)

	_, err = s.svc.Update(s.ctx, inv.ID, map[string]any{"notes": "late"})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict), "paid invoices are closed")
}

func (s *ServiceSuite) TestUpdateKeepsRefinements() {
	inv, err := s.svc.Create(s.ctx, draft())
	s.Require().NoError(err)

	_, err = s.svc.Update(s.ctx, inv.ID, map[string]any{"due_date": "2025-01-01"})
	s.Require().Error(err)
	s.Equal("body.due_date", dErrors.IssuesOf(err)[0].Path)
}

func (s *ServiceSuite) TestListClampsAndFilters() {
	for range 3 {
		_, err := s.svc.Create(s.ctx, draft())
		s.Require().NoError(err)
	}
	other := draft()
	other["resident_id"] = "42"
	_, err := s.svc.Create(s.ctx, other)
	s.Require().NoError(err)

	items, total, err := s.svc.List(s.ctx, ListQuery{Page: 0, Limit: 100})
	s.Require().NoError(err)
	s.Equal(4, total)
	s.Len(items, 4)

	items, total, err = s.svc.List(s.ctx, ListQuery{Page: 2, Limit: 2, ResidentID: domain.MustParseID("9007199254740993")})
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Len(items, 1)
}

func (s *ServiceSuite) TestGetMissing() {
	_, err := s.svc.Get(s.ctx, domain.MustParseID("1"))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

type brokenStore struct{ Store }

func (brokenStore) FindByID(context.Context, domain.ID) (*accounting.Invoice, error) {
	return nil, errors.New("disk on fire")
}

func (s *ServiceSuite) TestStoreFailuresAreInternal() {
	svc := New(brokenStore{Store: s.store}, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	_, err := svc.Get(s.ctx, domain.MustParseID("1"))
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
