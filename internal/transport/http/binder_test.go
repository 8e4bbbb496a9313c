package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"carehub/pkg/contract"
	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/envelope"
	"carehub/pkg/schema"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/trace/noop"
)

var testNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

var widget = schema.Shape(
	schema.Required("id", schema.ID()),
	schema.Required("name", schema.String().Min(1)),
)

func widgetTree(t *testing.T) *contract.Tree {
	t.Helper()
	errorEnv := envelope.ErrorSchema()
	ops := map[string]*contract.Operation{
		"get": contract.MustDefine(contract.Spec{
			Method:     http.MethodGet,
			Path:       "/widgets/:id",
			PathParams: map[string]schema.Schema{"id": schema.ID()},
			Responses: map[int]*schema.Object{
				http.StatusOK:                  envelope.SuccessSchema(widget),
				http.StatusBadRequest:          errorEnv,
				http.StatusNotFound:            errorEnv,
				http.StatusInternalServerError: errorEnv,
			},
		}),
		"create": contract.MustDefine(contract.Spec{
			Method: http.MethodPost,
			Path:   "/widgets",
			Body:   widget.CreateInput(),
			Responses: map[int]*schema.Object{
				http.StatusCreated:             envelope.SuccessSchema(widget),
				http.StatusBadRequest:          errorEnv,
				http.StatusInternalServerError: errorEnv,
			},
		}),
		"delete": contract.MustDefine(contract.Spec{
			Method:     http.MethodDelete,
			Path:       "/widgets/:id",
			PathParams: map[string]schema.Schema{"id": schema.ID()},
			Responses: map[int]*schema.Object{
				http.StatusOK:                  envelope.SuccessSchema(nil),
				http.StatusInternalServerError: errorEnv,
			},
		}),
	}
	tree, err := contract.MergeRouters(contract.NewRouter("widgets", ops))
	require.NoError(t, err)
	return tree
}

// BinderSuite drives the contract binder through a real chi router.
//
// Justification: the binder is the only place where declared schemas meet
// live HTTP. These tests pin the status/envelope pairing for each failure
// mode and check that the instrumentation sees every request.
type BinderSuite struct {
	suite.Suite
	binder  *Binder
	metrics *Metrics
	router  http.Handler
}

func TestBinderSuite(t *testing.T) {
	suite.Run(t, new(BinderSuite))
}

func (s *BinderSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.metrics = NewMetrics(prometheus.NewRegistry())
	s.binder = NewBinder(widgetTree(s.T()), logger,
		WithMetrics(s.metrics),
		WithTracer(noop.NewTracerProvider().Tracer("test")),
		WithResponseVerification(true),
	)

	s.Require().NoError(s.binder.Handle("widgets.get", func(ctx context.Context, req *contract.Request) (Response, error) {
		id := req.PathID("id")
		switch id.String() {
		case "404":
			return Response{}, dErrors.New(dErrors.CodeNotFound, "widget not found")
		case "13":
			// Numeric id violates the declared response schema.
			return Respond(ctx, http.StatusOK, map[string]any{"id": 13, "name": "cursed"}, ""), nil
		}
		return Respond(ctx, http.StatusOK, map[string]any{"id": id, "name": "gear"}, ""), nil
	}))
	s.Require().NoError(s.binder.Handle("widgets.create", func(ctx context.Context, req *contract.Request) (Response, error) {
		body := req.BodyMap()
		return Respond(ctx, http.StatusCreated, map[string]any{"id": "9007199254740993", "name": body["name"]}, "created"), nil
	}))

	s.router = NewRouter(RouterConfig{Binder: s.binder, Logger: logger, MaxBodyBytes: 1 << 10})
}

func (s *BinderSuite) do(method, path, body string) (int, map[string]any) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

func errorOf(body map[string]any) map[string]any {
	e, _ := body["error"].(map[string]any)
	return e
}

func (s *BinderSuite) TestSuccess() {
	code, body := s.do(http.MethodGet, "/widgets/123456789012345678", "")

	s.Equal(http.StatusOK, code)
	s.Equal(true, body["success"])
	s.Equal(map[string]any{"id": "123456789012345678", "name": "gear"}, body["data"])
	s.NotEmpty(body["timestamp"])
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Requests.WithLabelValues("widgets.get", "200")))
}

func (s *BinderSuite) TestCreateKeepsLargeIDsAsStrings() {
	code, body := s.do(http.MethodPost, "/widgets", `{"name":"sprocket"}`)

	s.Equal(http.StatusCreated, code)
	s.Equal("created", body["message"])
	s.Equal("9007199254740993", body["data"].(map[string]any)["id"])
}

func (s *BinderSuite) TestRequestValidation() {
	s.Run("bad path parameter", func() {
		code, body := s.do(http.MethodGet, "/widgets/abc", "")

		s.Equal(http.StatusBadRequest, code)
		s.Equal("VALIDATION_ERROR", errorOf(body)["code"])
		details := errorOf(body)["details"].([]any)
		s.Require().Len(details, 1)
		s.Equal("path.id", details[0].(map[string]any)["path"])
	})

	s.Run("missing body field", func() {
		code, body := s.do(http.MethodPost, "/widgets", `{}`)

		s.Equal(http.StatusBadRequest, code)
		details := errorOf(body)["details"].([]any)
		s.Equal(map[string]any{"path": "body.name", "message": "is required"}, details[0])
	})

	s.Run("invalid JSON body", func() {
		code, body := s.do(http.MethodPost, "/widgets", `{"name":`)

		s.Equal(http.StatusBadRequest, code)
		s.Equal("VALIDATION_ERROR", errorOf(body)["code"])
	})

	s.Equal(1.0, testutil.ToFloat64(s.metrics.ValidationFailures.WithLabelValues("widgets.get", "path")))
	s.Equal(2.0, testutil.ToFloat64(s.metrics.ValidationFailures.WithLabelValues("widgets.create", "body")))
}

func (s *BinderSuite) TestOversizedBody() {
	code, body := s.do(http.MethodPost, "/widgets", `{"name":"`+strings.Repeat("x", 2048)+`"}`)

	s.Equal(http.StatusRequestEntityTooLarge, code)
	s.Equal("PAYLOAD_TOO_LARGE", errorOf(body)["code"])
}

func (s *BinderSuite) TestHandlerErrors() {
	code, body := s.do(http.MethodGet, "/widgets/404", "")

	s.Equal(http.StatusNotFound, code)
	s.Equal(map[string]any{"code": "NOT_FOUND", "message": "widget not found"}, errorOf(body))
}

func (s *BinderSuite) TestUnboundOperationAnswers501() {
	s.Equal([]string{"widgets.delete"}, s.binder.Unbound())

	code, body := s.do(http.MethodDelete, "/widgets/1", "")

	s.Equal(http.StatusNotImplemented, code)
	s.Equal("NOT_IMPLEMENTED", errorOf(body)["code"])
}

func (s *BinderSuite) TestResponseVerification() {
	code, body := s.do(http.MethodGet, "/widgets/13", "")

	s.Equal(http.StatusInternalServerError, code)
	s.Equal(map[string]any{"code": "INTERNAL_ERROR", "message": "internal error"}, errorOf(body))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ContractViolations.WithLabelValues("widgets.get")))
}

func (s *BinderSuite) TestHandleRejectsUnknownAndDuplicate() {
	nop := func(context.Context, *contract.Request) (Response, error) { return Response{}, nil }

	err := s.binder.Handle("widgets.nope", nop)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	err = s.binder.Handle("widgets.get", nop)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *BinderSuite) TestContractDocument() {
	code, body := s.do(http.MethodGet, "/contract", "")

	s.Equal(http.StatusOK, code)
	docs := body["data"].([]any)
	s.Require().Len(docs, 3)
	s.Equal("widgets.create", docs[0].(map[string]any)["id"])
}

func (s *BinderSuite) TestUnmatchedRoutes() {
	code, body := s.do(http.MethodGet, "/nope", "")
	s.Equal(http.StatusNotFound, code)
	s.Equal("NOT_FOUND", errorOf(body)["code"])

	code, body = s.do(http.MethodPut, "/widgets", `{"name":"x"}`)
	s.Equal(http.StatusMethodNotAllowed, code)
	s.Equal("METHOD_NOT_ALLOWED", errorOf(body)["code"])
}

func TestRespondEnvelope(t *testing.T) {
	page := envelope.WrapOffsetPage([]string{"a"}, 1, 1, 20, testNow)
	resp := RespondEnvelope(http.StatusOK, page)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(resp.Body))
	require.Contains(t, buf.String(), `"totalPages":1`)
}
