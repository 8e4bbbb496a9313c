// Package envelope implements the response envelope protocol: every response
// body is either a success envelope carrying data or an error envelope
// carrying a coded error. The boolean "success" field is the only
// discriminant.
package envelope

import (
	"encoding/json"
	"errors"
	"time"

	"carehub/pkg/domain"
	dErrors "carehub/pkg/domain-errors"
)

// ErrorBody is the "error" member of an error envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OffsetMeta is the "meta" member of an offset page.
type OffsetMeta struct {
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

// Envelope is one response body. When Success is false only Error and
// Timestamp are meaningful; when true, Data, Message and Meta are.
type Envelope[T any] struct {
	Success   bool
	Data      T
	Message   string
	Meta      *OffsetMeta
	Error     *ErrorBody
	Timestamp domain.Timestamp
}

type successWire[T any] struct {
	Success   bool             `json:"success"`
	Data      T                `json:"data"`
	Message   string           `json:"message,omitempty"`
	Meta      *OffsetMeta      `json:"meta,omitempty"`
	Timestamp domain.Timestamp `json:"timestamp"`
}

type errorWire struct {
	Success   bool             `json:"success"`
	Error     ErrorBody        `json:"error"`
	Timestamp domain.Timestamp `json:"timestamp"`
}

// MarshalJSON emits exactly the members of the active branch.
func (e Envelope[T]) MarshalJSON() ([]byte, error) {
	if e.Success {
		return json.Marshal(successWire[T]{
			Success:   true,
			Data:      e.Data,
			Message:   e.Message,
			Meta:      e.Meta,
			Timestamp: e.Timestamp,
		})
	}
	var body ErrorBody
	if e.Error != nil {
		body = *e.Error
	}
	return json.Marshal(errorWire{Success: false, Error: body, Timestamp: e.Timestamp})
}

// UnmarshalJSON reads either branch without schema validation. Use Decode
// to validate against a declared schema.
func (e *Envelope[T]) UnmarshalJSON(b []byte) error {
	var probe struct {
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	if probe.Success == nil {
		return dErrors.WithIssues(dErrors.CodeMalformedEnvelope, "malformed envelope",
			[]dErrors.Issue{{Path: "success", Message: "is required"}})
	}
	if *probe.Success {
		var w successWire[T]
		if err := json.Unmarshal(b, &w); err != nil {
			return err
		}
		*e = Envelope[T]{Success: true, Data: w.Data, Message: w.Message, Meta: w.Meta, Timestamp: w.Timestamp}
		return nil
	}
	var w errorWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*e = Envelope[T]{Error: &w.Error, Timestamp: w.Timestamp}
	return nil
}

// Err converts an error envelope into a domain error carrying its code. It
// returns nil for success envelopes.
func (e Envelope[T]) Err() error {
	if e.Success {
		return nil
	}
	if e.Error == nil {
		return dErrors.New(dErrors.CodeMalformedEnvelope, "error envelope without error body")
	}
	return &dErrors.Error{
		Code:    dErrors.Code(e.Error.Code),
		Message: e.Error.Message,
		Issues:  issuesFromDetails(e.Error.Details),
	}
}

// WrapSuccess builds a success envelope stamped with now.
func WrapSuccess[T any](data T, message string, now time.Time) Envelope[T] {
	return Envelope[T]{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: domain.TimestampFromTime(now),
	}
}

// WrapError builds an error envelope stamped with now.
func WrapError(code, message string, details any, now time.Time) Envelope[any] {
	return Envelope[any]{
		Error:     &ErrorBody{Code: code, Message: message, Details: details},
		Timestamp: domain.TimestampFromTime(now),
	}
}

// FromError builds an error envelope from any error. Validation issues are
// exposed as details so clients can attribute them to fields.
func FromError(err error, now time.Time) Envelope[any] {
	var details any
	if issues := dErrors.IssuesOf(err); len(issues) > 0 {
		details = issues
	}
	message := "internal error"
	var de *dErrors.Error
	if errors.As(err, &de) {
		message = de.Message
		if message == "" {
			message = string(de.Code)
		}
	}
	return WrapError(string(dErrors.CodeOf(err)), message, details, now)
}

func issuesFromDetails(details any) []dErrors.Issue {
	switch d := details.(type) {
	case []dErrors.Issue:
		return d
	case []any:
		var out []dErrors.Issue
		for _, item := range d {
			m, ok := item.(map[string]any)
			if !ok {
				return nil
			}
			path, _ := m["path"].(string)
			msg, _ := m["message"].(string)
			out = append(out, dErrors.Issue{Path: path, Message: msg})
		}
		return out
	}
	return nil
}
