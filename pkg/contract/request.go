package contract

import (
	"net/http"
	"net/url"

	"carehub/pkg/domain"
	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/schema"
)

// Input is a raw request as seen by the transport.
type Input struct {
	PathParams map[string]string
	Query      url.Values
	Headers    http.Header
	Body       []byte
}

// Request is a validated request. Values are in parsed form (domain.ID,
// int64, map[string]any, ...).
type Request struct {
	Operation  *Operation
	PathParams map[string]any
	Query      map[string]any
	Headers    map[string]any
	Body       any
}

// ValidateRequest checks every part of in against the descriptor and
// returns all issues at once. Issue paths are prefixed with the request
// part: path., query., header. or body.
func (o *Operation) ValidateRequest(in Input) (*Request, error) {
	req := &Request{Operation: o, PathParams: map[string]any{}}
	var issues []dErrors.Issue

	for _, name := range o.ParamNames() {
		raw, ok := in.PathParams[name]
		if !ok || raw == "" {
			issues = append(issues, dErrors.Issue{Path: "path." + name, Message: "is required"})
			continue
		}
		parsed, err := schema.Validate(o.spec.PathParams[name], raw)
		if err != nil {
			issues = append(issues, prefixed("path."+name, err)...)
			continue
		}
		req.PathParams[name] = parsed
	}

	if o.spec.Query != nil {
		parsed, err := o.spec.Query.Validate(queryMap(in.Query))
		if err != nil {
			issues = append(issues, prefixed("query", err)...)
		}
		req.Query = parsed
	}

	if o.spec.Headers != nil {
		parsed, err := o.spec.Headers.Validate(headerMap(o.spec.Headers, in.Headers))
		if err != nil {
			issues = append(issues, prefixed("header", err)...)
		}
		req.Headers = parsed
	}

	if o.spec.Body != nil {
		if len(in.Body) == 0 {
			issues = append(issues, dErrors.Issue{Path: "body", Message: "is required"})
		} else {
			parsed, err := schema.ValidateJSON(o.spec.Body, in.Body)
			if err != nil {
				issues = append(issues, prefixed("body", err)...)
			}
			req.Body = parsed
		}
	}

	if len(issues) > 0 {
		return nil, dErrors.NewValidation(issues)
	}
	return req, nil
}

func prefixed(prefix string, err error) []dErrors.Issue {
	src := dErrors.IssuesOf(err)
	if len(src) == 0 {
		return []dErrors.Issue{{Path: prefix, Message: err.Error()}}
	}
	out := make([]dErrors.Issue, len(src))
	for i, is := range src {
		path := prefix
		if is.Path != "" {
			path += "." + is.Path
		}
		out[i] = dErrors.Issue{Path: path, Message: is.Message}
	}
	return out
}

// queryMap flattens single-valued parameters to strings and keeps repeated
// ones as arrays.
func queryMap(q url.Values) map[string]any {
	out := make(map[string]any, len(q))
	for k, vs := range q {
		switch len(vs) {
		case 0:
		case 1:
			out[k] = vs[0]
		default:
			items := make([]any, len(vs))
			for i, v := range vs {
				items[i] = v
			}
			out[k] = items
		}
	}
	return out
}

// headerMap picks the declared headers. Field names are matched
// case-insensitively, as HTTP requires.
func headerMap(s *schema.Object, h http.Header) map[string]any {
	out := make(map[string]any)
	for _, f := range s.Fields() {
		if v := h.Get(f.Name()); v != "" {
			out[f.Name()] = v
		}
	}
	return out
}

// PathID returns an identifier path parameter, or the zero ID.
func (r *Request) PathID(name string) domain.ID {
	id, _ := r.PathParams[name].(domain.ID)
	return id
}

// PathString returns a string path parameter.
func (r *Request) PathString(name string) string {
	s, _ := r.PathParams[name].(string)
	return s
}

// QueryString returns a string query value or "".
func (r *Request) QueryString(name string) string {
	s, _ := r.Query[name].(string)
	return s
}

// QueryInt returns an integer query value or 0.
func (r *Request) QueryInt(name string) int {
	n, _ := r.Query[name].(int64)
	return int(n)
}

// BodyMap returns the body as an object, or nil.
func (r *Request) BodyMap() map[string]any {
	m, _ := r.Body.(map[string]any)
	return m
}
