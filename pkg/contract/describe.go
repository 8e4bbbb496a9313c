package contract

import "strconv"

// OperationDoc is the JSON description of one operation, served by the API
// and printed by contractctl.
type OperationDoc struct {
	ID         string                    `json:"id"`
	Method     string                    `json:"method"`
	Path       string                    `json:"path"`
	Summary    string                    `json:"summary,omitempty"`
	Pagination string                    `json:"pagination"`
	PathParams map[string]map[string]any `json:"path_params,omitempty"`
	Query      map[string]any            `json:"query,omitempty"`
	Headers    map[string]any            `json:"headers,omitempty"`
	Body       map[string]any            `json:"body,omitempty"`
	Responses  map[string]map[string]any `json:"responses"`
}

// Describe renders e with every schema exported as JSON Schema.
func Describe(e Entry) OperationDoc {
	op := e.Operation
	doc := OperationDoc{
		ID:         e.ID(),
		Method:     op.Method(),
		Path:       op.Path(),
		Summary:    op.Summary(),
		Pagination: op.Pagination().String(),
		Responses:  make(map[string]map[string]any, len(op.statuses)),
	}
	for name, s := range op.spec.PathParams {
		if doc.PathParams == nil {
			doc.PathParams = make(map[string]map[string]any)
		}
		doc.PathParams[name] = s.JSONSchema()
	}
	if op.spec.Query != nil {
		doc.Query = op.spec.Query.JSONSchema()
	}
	if op.spec.Headers != nil {
		doc.Headers = op.spec.Headers.JSONSchema()
	}
	if op.spec.Body != nil {
		doc.Body = op.spec.Body.JSONSchema()
	}
	for _, status := range op.statuses {
		doc.Responses[strconv.Itoa(status)] = op.spec.Responses[status].JSONSchema()
	}
	return doc
}

// Describe renders every operation in tree order.
func (t *Tree) Describe() []OperationDoc {
	out := make([]OperationDoc, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, Describe(e))
	}
	return out
}
