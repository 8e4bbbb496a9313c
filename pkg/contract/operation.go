// Package contract declares API operations and assembles them into an
// immutable contract tree shared by the server binding and the client.
//
// A descriptor is only ever in its declared state here; binding it to a live
// handler or client belongs to the transport packages.
package contract

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"

	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/envelope"
	"carehub/pkg/schema"
)

// Pagination is the list flavor an operation declares.
type Pagination int

const (
	PaginationNone Pagination = iota
	PaginationOffset
	PaginationCursor
)

func (p Pagination) String() string {
	switch p {
	case PaginationOffset:
		return "offset"
	case PaginationCursor:
		return "cursor"
	default:
		return "none"
	}
}

// Spec is the declaration passed to DefineOperation. Responses maps each
// declared status code to its full envelope schema.
type Spec struct {
	Method     string
	Path       string // segments, with :name tokens for parameters
	PathParams map[string]schema.Schema
	Query      *schema.Object
	Headers    *schema.Object
	Body       schema.Schema
	Responses  map[int]*schema.Object
	Pagination Pagination
	Summary    string
}

// Operation is a validated, immutable descriptor.
type Operation struct {
	spec     Spec
	segments []segment
	statuses []int
}

type segment struct {
	literal string
	param   string
}

var (
	paramName      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	allowedMethods = map[string]bool{
		http.MethodGet:    true,
		http.MethodPost:   true,
		http.MethodPut:    true,
		http.MethodPatch:  true,
		http.MethodDelete: true,
	}
)

// DefineOperation checks a declaration and returns its descriptor. Every
// :param token in the path must be declared in PathParams and every declared
// param must appear in the path.
func DefineOperation(spec Spec) (*Operation, error) {
	spec.Method = strings.ToUpper(spec.Method)
	if !allowedMethods[spec.Method] {
		return nil, invalid(spec, "unsupported method %q", spec.Method)
	}
	segments, err := parsePath(spec.Path)
	if err != nil {
		return nil, invalid(spec, "%s", err.Error())
	}

	tokens := make(map[string]bool)
	for _, seg := range segments {
		if seg.param == "" {
			continue
		}
		if tokens[seg.param] {
			return nil, invalid(spec, "path parameter %q appears twice", seg.param)
		}
		tokens[seg.param] = true
		if _, ok := spec.PathParams[seg.param]; !ok {
			return nil, invalid(spec, "path parameter %q is not declared in PathParams", seg.param)
		}
	}
	for name, s := range spec.PathParams {
		if !tokens[name] {
			return nil, invalid(spec, "declared path parameter %q does not appear in the path", name)
		}
		if s == nil {
			return nil, invalid(spec, "path parameter %q has no schema", name)
		}
	}

	if len(spec.Responses) == 0 {
		return nil, invalid(spec, "at least one response must be declared")
	}
	statuses := make([]int, 0, len(spec.Responses))
	for status, s := range spec.Responses {
		if status < 100 || status > 599 {
			return nil, invalid(spec, "status %d is outside 100-599", status)
		}
		if s == nil {
			return nil, invalid(spec, "status %d has no schema", status)
		}
		statuses = append(statuses, status)
	}
	sort.Ints(statuses)

	if spec.Body != nil && (spec.Method == http.MethodGet || spec.Method == http.MethodDelete) {
		return nil, invalid(spec, "%s operations cannot declare a body", spec.Method)
	}
	if err := checkPagination(spec); err != nil {
		return nil, err
	}

	spec.PathParams = copyMap(spec.PathParams)
	spec.Responses = copyMap(spec.Responses)
	return &Operation{spec: spec, segments: segments, statuses: statuses}, nil
}

// MustDefine is DefineOperation for package-level declarations; it panics on
// an invalid descriptor.
func MustDefine(spec Spec) *Operation {
	op, err := DefineOperation(spec)
	if err != nil {
		panic(err)
	}
	return op
}

func checkPagination(spec Spec) error {
	var want []string
	switch spec.Pagination {
	case PaginationNone:
		return nil
	case PaginationOffset:
		want = []string{"page", "limit"}
	case PaginationCursor:
		want = []string{"cursor", "limit"}
	default:
		return invalid(spec, "unknown pagination flavor %d", spec.Pagination)
	}
	if spec.Method != http.MethodGet {
		return invalid(spec, "%s pagination requires GET", spec.Pagination)
	}
	if spec.Query == nil {
		return invalid(spec, "%s pagination requires a query schema", spec.Pagination)
	}
	for _, name := range want {
		if !spec.Query.Has(name) {
			return invalid(spec, "%s pagination requires query field %q", spec.Pagination, name)
		}
	}
	return nil
}

func parsePath(path string) ([]segment, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("path %q must start with /", path)
	}
	if path == "/" {
		return nil, nil
	}
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	segments := make([]segment, 0, len(parts))
	for _, part := range parts {
		switch {
		case part == "":
			return nil, fmt.Errorf("path %q has an empty segment", path)
		case strings.HasPrefix(part, ":"):
			name := part[1:]
			if !paramName.MatchString(name) {
				return nil, fmt.Errorf("path %q has an invalid parameter token %q", path, part)
			}
			segments = append(segments, segment{param: name})
		case strings.ContainsAny(part, ":{}"):
			return nil, fmt.Errorf("path %q has an invalid segment %q", path, part)
		default:
			segments = append(segments, segment{literal: part})
		}
	}
	return segments, nil
}

func invalid(spec Spec, format string, args ...any) error {
	return dErrors.Newf(dErrors.CodeInvalidDescriptor, "%s %s: "+format, append([]any{spec.Method, spec.Path}, args...)...)
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (o *Operation) Method() string          { return o.spec.Method }
func (o *Operation) Path() string            { return o.spec.Path }
func (o *Operation) Summary() string         { return o.spec.Summary }
func (o *Operation) Pagination() Pagination  { return o.spec.Pagination }
func (o *Operation) Query() *schema.Object   { return o.spec.Query }
func (o *Operation) Headers() *schema.Object { return o.spec.Headers }
func (o *Operation) Body() schema.Schema     { return o.spec.Body }
func (o *Operation) Statuses() []int         { return append([]int(nil), o.statuses...) }

// PathParam returns the schema declared for a path parameter.
func (o *Operation) PathParam(name string) (schema.Schema, bool) {
	s, ok := o.spec.PathParams[name]
	return s, ok
}

// Response returns the envelope schema declared for status.
func (o *Operation) Response(status int) (*schema.Object, bool) {
	s, ok := o.spec.Responses[status]
	return s, ok
}

// Key identifies the route as "METHOD /path/:param".
func (o *Operation) Key() string {
	return o.spec.Method + " " + o.spec.Path
}

// shape is the route with parameter names erased, so /x/:id and /x/:key
// collide.
func (o *Operation) shape() string {
	var b strings.Builder
	b.WriteString(o.spec.Method)
	b.WriteByte(' ')
	if len(o.segments) == 0 {
		b.WriteByte('/')
	}
	for _, seg := range o.segments {
		b.WriteByte('/')
		if seg.param != "" {
			b.WriteByte(':')
			continue
		}
		b.WriteString(seg.literal)
	}
	return b.String()
}

// RoutePattern renders the path with {param} placeholders for chi.
func (o *Operation) RoutePattern() string {
	if len(o.segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, seg := range o.segments {
		b.WriteByte('/')
		if seg.param != "" {
			b.WriteString("{" + seg.param + "}")
			continue
		}
		b.WriteString(seg.literal)
	}
	return b.String()
}

// ParamNames lists the path parameters in path order.
func (o *Operation) ParamNames() []string {
	var out []string
	for _, seg := range o.segments {
		if seg.param != "" {
			out = append(out, seg.param)
		}
	}
	return out
}

// BuildPath substitutes params into the path, escaping each value.
func (o *Operation) BuildPath(params map[string]string) (string, error) {
	if len(o.segments) == 0 {
		return "/", nil
	}
	var b strings.Builder
	var issues []dErrors.Issue
	for _, seg := range o.segments {
		b.WriteByte('/')
		if seg.param == "" {
			b.WriteString(seg.literal)
			continue
		}
		v, ok := params[seg.param]
		if !ok || v == "" {
			issues = append(issues, dErrors.Issue{Path: "path." + seg.param, Message: "is required"})
			continue
		}
		b.WriteString(url.PathEscape(v))
	}
	if len(issues) > 0 {
		return "", dErrors.NewValidation(issues)
	}
	return b.String(), nil
}

// match reports whether a concrete request path fits this operation and
// returns the raw parameter values.
func (o *Operation) match(method, path string) (map[string]string, bool) {
	if method != o.spec.Method {
		return nil, false
	}
	trimmed := strings.Trim(path, "/")
	var parts []string
	if trimmed != "" {
		parts = strings.Split(trimmed, "/")
	}
	if len(parts) != len(o.segments) {
		return nil, false
	}
	params := make(map[string]string)
	for i, seg := range o.segments {
		if seg.param == "" {
			if parts[i] != seg.literal {
				return nil, false
			}
			continue
		}
		v, err := url.PathUnescape(parts[i])
		if err != nil || v == "" {
			return nil, false
		}
		params[seg.param] = v
	}
	return params, true
}

func (o *Operation) literalCount() int {
	n := 0
	for _, seg := range o.segments {
		if seg.param == "" {
			n++
		}
	}
	return n
}

// ValidateResponse validates a response body against the schema declared for
// status. Undeclared statuses fail with UNDECLARED_STATUS.
func (o *Operation) ValidateResponse(status int, raw []byte) (envelope.Envelope[any], error) {
	s, ok := o.spec.Responses[status]
	if !ok {
		return envelope.Envelope[any]{}, dErrors.Newf(dErrors.CodeUndeclaredStatus, "%s does not declare status %d", o.Key(), status)
	}
	return envelope.ValidateAgainst(raw, s)
}
