// Package client calls contract operations over HTTP. Requests are checked
// against the operation's descriptor before they are sent and responses
// are checked against the schema declared for the returned status.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"carehub/pkg/contract"
	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/envelope"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 10 << 20
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient HTTPDoer
	// Headers are sent with every request, e.g. Authorization.
	Headers http.Header
	Tracer  trace.Tracer
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	doer    HTTPDoer
	headers http.Header
	tracer  trace.Tracer
}

// New creates a client for the API at cfg.BaseURL.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		doer:    cfg.HTTPClient,
		headers: cfg.Headers.Clone(),
		tracer:  cfg.Tracer,
	}
	if c.doer == nil {
		c.doer = &http.Client{Timeout: cfg.Timeout}
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("carehub/client")
	}
	return c
}

// Input is one call. Body is marshalled to JSON; pass json.RawMessage to
// send bytes unchanged.
type Input struct {
	PathParams map[string]string
	Query      url.Values
	Headers    http.Header
	Body       any
}

// Response is a validated reply. Envelope may be either branch; use Err to
// turn an error envelope into a coded error.
type Response struct {
	Status   int
	Envelope envelope.Envelope[any]
	Raw      []byte
}

// Err returns the coded error carried by an error envelope, or nil.
func (r *Response) Err() error {
	return r.Envelope.Err()
}

// Do validates in against op, sends it and validates the reply. A reply
// that breaks its declared schema fails with MALFORMED_ENVELOPE, and one
// with a status op never declared fails with UNDECLARED_STATUS. Neither is
// retried.
func (c *Client) Do(ctx context.Context, op *contract.Operation, in Input) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "client "+op.Key(), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	resp, err := c.do(ctx, op, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.Status))
	return resp, nil
}

func (c *Client) do(ctx context.Context, op *contract.Operation, in Input) (*Response, error) {
	var body []byte
	if in.Body != nil {
		var err error
		if body, err = json.Marshal(in.Body); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "request body is not JSON-serializable")
		}
	}
	headers := c.headers.Clone()
	if headers == nil {
		headers = http.Header{}
	}
	for k, vs := range in.Headers {
		headers.Del(k)
		for _, v := range vs {
			headers.Add(k, v)
		}
	}

	if _, err := op.ValidateRequest(contract.Input{
		PathParams: in.PathParams,
		Query:      in.Query,
		Headers:    headers,
		Body:       body,
	}); err != nil {
		return nil, err
	}

	path, err := op.BuildPath(in.PathParams)
	if err != nil {
		return nil, err
	}
	target := c.baseURL + path
	if len(in.Query) > 0 {
		target += "?" + in.Query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, op.Method(), target, reader)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create request")
	}
	req.Header = headers
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.doer.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to execute request")
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read response")
	}

	env, err := op.ValidateResponse(httpResp.StatusCode, raw)
	if err != nil {
		return nil, err
	}
	return &Response{Status: httpResp.StatusCode, Envelope: env, Raw: raw}, nil
}

// DecodeData projects the data of a success response onto T. Error
// envelopes are returned as their coded error.
func DecodeData[T any](resp *Response) (T, error) {
	var out T
	if err := resp.Err(); err != nil {
		return out, err
	}
	b, err := json.Marshal(resp.Envelope.Data)
	if err != nil {
		return out, dErrors.Wrap(err, dErrors.CodeInternal, "encode response data")
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, dErrors.Wrap(err, dErrors.CodeInternal, "decode response data")
	}
	return out, nil
}
