// Package httptransport binds the contract tree to chi. Every declared
// operation gets a route; requests are validated against the descriptor
// before a handler runs and responses are written as envelopes.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"carehub/pkg/contract"
	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/envelope"
	"carehub/pkg/platform/httputil"
	"carehub/pkg/platform/middleware/requesttime"
	"carehub/pkg/requestcontext"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Response is what an operation handler produces. Body is a complete
// envelope; build it with Respond or RespondEnvelope.
type Response struct {
	Status int
	Body   any
}

// Handler serves one contract operation. req has already passed the
// descriptor's request schemas.
type Handler func(ctx context.Context, req *contract.Request) (Response, error)

// Respond wraps data in a success envelope stamped with the request time.
func Respond[T any](ctx context.Context, status int, data T, message string) Response {
	return Response{Status: status, Body: envelope.WrapSuccess(data, message, requesttime.Now(ctx))}
}

// RespondEnvelope sends a prebuilt envelope such as a page.
func RespondEnvelope[T any](status int, env envelope.Envelope[T]) Response {
	return Response{Status: status, Body: env}
}

// Binder mounts contract operations on a chi router.
type Binder struct {
	tree            *contract.Tree
	handlers        map[string]Handler
	logger          *slog.Logger
	metrics         *Metrics
	tracer          trace.Tracer
	verifyResponses bool
}

// Option configures a Binder.
type Option func(*Binder)

// WithMetrics records per-operation Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(b *Binder) { b.metrics = m }
}

// WithTracer replaces the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(b *Binder) { b.tracer = t }
}

// WithResponseVerification validates every outgoing body against the schema
// declared for its status. A violation is logged and turned into a 500.
func WithResponseVerification(enabled bool) Option {
	return func(b *Binder) { b.verifyResponses = enabled }
}

// NewBinder creates a binder over tree.
func NewBinder(tree *contract.Tree, logger *slog.Logger, opts ...Option) *Binder {
	b := &Binder{
		tree:     tree,
		handlers: make(map[string]Handler),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.tracer == nil {
		b.tracer = otel.Tracer("carehub/transport")
	}
	return b
}

// Handle attaches h to the operation "domain.name". Unknown operations are
// rejected so a typo cannot leave a route unimplemented silently.
func (b *Binder) Handle(id string, h Handler) error {
	if _, err := b.tree.LookupID(id); err != nil {
		return err
	}
	if _, dup := b.handlers[id]; dup {
		return dErrors.Newf(dErrors.CodeConflict, "handler for %s registered twice", id)
	}
	b.handlers[id] = h
	return nil
}

// Unbound lists operations without a handler. They answer 501.
func (b *Binder) Unbound() []string {
	var out []string
	for _, e := range b.tree.Entries() {
		if _, ok := b.handlers[e.ID()]; !ok {
			out = append(out, e.ID())
		}
	}
	return out
}

// Mount registers every operation of the tree on r, plus GET /contract.
func (b *Binder) Mount(r chi.Router) {
	for _, e := range b.tree.Entries() {
		r.Method(e.Operation.Method(), e.Operation.RoutePattern(), b.serve(e))
	}
	r.Get("/contract", b.describe)
}

func (b *Binder) describe(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, r, http.StatusOK, b.tree.Describe(), "")
}

func (b *Binder) serve(e contract.Entry) http.HandlerFunc {
	op := e.Operation
	id := e.ID()
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := requestcontext.WithOperation(r.Context(), id)
		ctx, span := b.tracer.Start(ctx, op.Key(), trace.WithAttributes(
			attribute.String("carehub.operation", id),
			attribute.String("http.request.method", op.Method()),
			attribute.String("http.route", op.Path()),
		))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		err := b.dispatch(rec, r.WithContext(ctx), e)
		status := rec.status
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if err != nil {
			span.RecordError(err)
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, err.Error())
			}
		}
		span.End()
		b.metrics.observe(id, status, time.Since(start).Seconds())
	}
}

// dispatch runs one request. The returned error is for tracing only; the
// response has already been written.
func (b *Binder) dispatch(w http.ResponseWriter, r *http.Request, e contract.Entry) error {
	ctx := r.Context()
	op := e.Operation
	id := e.ID()

	in := contract.Input{
		PathParams: make(map[string]string),
		Query:      r.URL.Query(),
		Headers:    r.Header,
	}
	for _, name := range op.ParamNames() {
		in.PathParams[name] = chi.URLParam(r, name)
	}
	if op.Body() != nil {
		raw, ok := httputil.ReadBody(w, r, b.logger)
		if !ok {
			return dErrors.New(dErrors.CodeBadRequest, "request body rejected")
		}
		in.Body = raw
	}

	req, err := op.ValidateRequest(in)
	if err != nil {
		b.metrics.recordValidation(id, dErrors.IssuesOf(err))
		b.logger.InfoContext(ctx, "request rejected",
			"operation", id,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return b.writeError(w, r, err)
	}

	h, ok := b.handlers[id]
	if !ok {
		err = dErrors.Newf(dErrors.CodeNotImplemented, "%s is declared but not implemented", id)
		return b.writeError(w, r, err)
	}

	resp, err := h(ctx, req)
	if err != nil {
		status := httputil.DomainCodeToHTTPStatus(dErrors.CodeOf(err))
		if status >= http.StatusInternalServerError {
			b.logger.ErrorContext(ctx, "operation failed",
				"operation", id,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		return b.writeError(w, r, err)
	}
	return b.writeResponse(w, r, e, resp)
}

func (b *Binder) writeError(w http.ResponseWriter, r *http.Request, err error) error {
	httputil.WriteError(w, r, err)
	return err
}

func (b *Binder) writeResponse(w http.ResponseWriter, r *http.Request, e contract.Entry, resp Response) error {
	ctx := r.Context()
	if resp.Status == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
	raw, err := json.Marshal(resp.Body)
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to encode response",
			"operation", e.ID(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return b.writeError(w, r, err)
	}
	if b.verifyResponses {
		if _, err := e.Operation.ValidateResponse(resp.Status, raw); err != nil {
			b.metrics.recordViolation(e.ID())
			b.logger.ErrorContext(ctx, "response violates contract",
				"operation", e.ID(),
				"status", resp.Status,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			return b.writeError(w, r, &dErrors.Error{Code: dErrors.CodeInternal, Message: "internal error", Err: err})
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	_, _ = w.Write(append(raw, '\n'))
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// NotFound answers unmatched paths with a NOT_FOUND envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteError(w, r, dErrors.Newf(dErrors.CodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
}

// MethodNotAllowed answers a known path used with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	env := envelope.WrapError("METHOD_NOT_ALLOWED",
		r.Method+" is not allowed on "+r.URL.Path, nil, requesttime.Now(r.Context()))
	httputil.WriteJSON(w, http.StatusMethodNotAllowed, env)
}
