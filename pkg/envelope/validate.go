package envelope

import (
	"encoding/json"

	"carehub/pkg/domain"
	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/schema"
)

const (
	branchSuccess = "success"
	branchError   = "error"
)

var errorSchema = ErrorSchema()

// Validate checks raw against the success branch for dataSchema, then the
// error branch.
func Validate(raw []byte, dataSchema schema.Schema) (Envelope[any], error) {
	return ValidateAgainst(raw, SuccessSchema(dataSchema))
}

// ValidateAgainst is Validate with a prebuilt success branch, as declared in
// a contract descriptor (including page schemas).
func ValidateAgainst(raw []byte, success *schema.Object) (Envelope[any], error) {
	doc, err := schema.DecodeJSON(raw)
	if err != nil {
		return Envelope[any]{}, dErrors.WithIssues(dErrors.CodeMalformedEnvelope, "malformed envelope", dErrors.IssuesOf(err))
	}
	env, _, err := validateDocument(doc, success)
	return env, err
}

// ValidateValue validates an already decoded document.
func ValidateValue(doc any, success *schema.Object) (Envelope[any], error) {
	env, _, err := validateDocument(doc, success)
	return env, err
}

// validateDocument tries the success branch and then the error branch. Each
// branch inspects the "success" literal before anything else and is skipped
// when it does not match, so a document is only ever evaluated by the branch
// its discriminant selects. The second return lists the branches evaluated.
func validateDocument(doc any, success *schema.Object) (Envelope[any], []string, error) {
	m, ok := doc.(map[string]any)
	if !ok {
		return Envelope[any]{}, nil, malformed([]dErrors.Issue{{Message: "must be an object"}})
	}

	var attempted []string
	var selected []dErrors.Issue
	branches := []struct {
		name   string
		want   bool
		schema *schema.Object
	}{
		{branchSuccess, true, success},
		{branchError, false, errorSchema},
	}
	for _, b := range branches {
		if flag, ok := m["success"].(bool); !ok || flag != b.want {
			continue
		}
		attempted = append(attempted, b.name)
		parsed, err := b.schema.Validate(m)
		if err == nil {
			return fromParsed(parsed), attempted, nil
		}
		selected = dErrors.IssuesOf(err)
	}

	if len(attempted) == 0 {
		selected = []dErrors.Issue{{Path: "success", Message: "must be true or false"}}
	}
	return Envelope[any]{}, attempted, malformed(selected)
}

func malformed(issues []dErrors.Issue) error {
	return dErrors.WithIssues(dErrors.CodeMalformedEnvelope, "response matches neither envelope branch", issues)
}

func fromParsed(m map[string]any) Envelope[any] {
	ts, _ := m["timestamp"].(domain.Timestamp)
	if m["success"] != true {
		body, _ := m["error"].(map[string]any)
		code, _ := body["code"].(string)
		message, _ := body["message"].(string)
		return Envelope[any]{
			Error:     &ErrorBody{Code: code, Message: message, Details: body["details"]},
			Timestamp: ts,
		}
	}
	env := Envelope[any]{Success: true, Data: m["data"], Timestamp: ts}
	env.Message, _ = m["message"].(string)
	if meta, ok := m["meta"].(map[string]any); ok {
		env.Meta = &OffsetMeta{}
		env.Meta.Total, _ = meta["total"].(int64)
		env.Meta.Page, _ = meta["page"].(int64)
		env.Meta.Limit, _ = meta["limit"].(int64)
		env.Meta.TotalPages, _ = meta["totalPages"].(int64)
	}
	return env
}

// Decode validates raw against success and projects data onto T. An error
// envelope is returned as a value with Success false, not as an error.
func Decode[T any](raw []byte, success *schema.Object) (Envelope[T], error) {
	env, err := ValidateAgainst(raw, success)
	if err != nil {
		return Envelope[T]{}, err
	}
	out := Envelope[T]{
		Success:   env.Success,
		Message:   env.Message,
		Meta:      env.Meta,
		Error:     env.Error,
		Timestamp: env.Timestamp,
	}
	if !env.Success {
		return out, nil
	}
	b, err := json.Marshal(env.Data)
	if err != nil {
		return Envelope[T]{}, dErrors.Wrap(err, dErrors.CodeInternal, "encode envelope data")
	}
	if err := json.Unmarshal(b, &out.Data); err != nil {
		return Envelope[T]{}, dErrors.Wrap(err, dErrors.CodeInternal, "project envelope data")
	}
	return out, nil
}
