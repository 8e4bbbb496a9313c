package domainerrors

import (
	"errors"
	"fmt"
)

// Code represents a contract-layer error category independent of transport.
// Values are the stable strings carried in the error envelope's "code" field.
type Code string

const (
	// Primitive codec rejections. Always client input errors.
	CodeInvalidID        Code = "INVALID_ID"
	CodeInvalidTimestamp Code = "INVALID_TIMESTAMP"

	// CodeValidation is the schema validation failure. Errors with this code
	// carry one Issue per offending field.
	CodeValidation Code = "VALIDATION_ERROR"

	// CodeMalformedEnvelope means a response matched neither envelope branch.
	// Fatal to the current request; never retried by the contract layer.
	CodeMalformedEnvelope Code = "MALFORMED_ENVELOPE"

	// Declaration-time failures. Fatal to process initialization.
	CodeDuplicateRoute    Code = "DUPLICATE_ROUTE"
	CodeInvalidDescriptor Code = "INVALID_DESCRIPTOR"

	// CodeUndeclaredStatus means a response carried a status code its
	// descriptor does not declare.
	CodeUndeclaredStatus Code = "UNDECLARED_STATUS"

	// Transport and persistence collaborators.
	CodeBadRequest     Code = "BAD_REQUEST"
	CodeNotFound       Code = "NOT_FOUND"
	CodeConflict       Code = "CONFLICT"
	CodeUnauthorized   Code = "UNAUTHORIZED"
	CodeNotImplemented Code = "NOT_IMPLEMENTED"
	CodeInternal       Code = "INTERNAL_ERROR"

	// Raised by the HTTP middleware before a request reaches its operation.
	CodePayloadTooLarge  Code = "PAYLOAD_TOO_LARGE"
	CodeUnsupportedMedia Code = "UNSUPPORTED_MEDIA_TYPE"
)

// Issue attributes a validation failure to a single field so UI layers can
// render it next to the offending input.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Error wraps contract-layer or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across schema, envelope and store layers.
type Error struct {
	Code    Code
	Message string
	Issues  []Issue
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	switch len(e.Issues) {
	case 0:
		return msg
	case 1:
		return fmt.Sprintf("%s: %s", msg, e.Issues[0])
	default:
		return fmt.Sprintf("%s: %s (and %d more)", msg, e.Issues[0], len(e.Issues)-1)
	}
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Newf is New with fmt-style formatting.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewValidation creates a VALIDATION_ERROR carrying per-field issues.
func NewValidation(issues []Issue) error {
	return &Error{Code: CodeValidation, Message: "validation failed", Issues: issues}
}

// WithIssues creates an error with the given code that carries issues.
func WithIssues(code Code, msg string, issues []Issue) error {
	return &Error{Code: code, Message: msg, Issues: issues}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code and
// issues are preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Issues: existing.Issues, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// PrefixIssues re-anchors the issues of a validation error under prefix,
// so issues raised on a whole record read like request issues. Errors
// without issues are returned unchanged.
func PrefixIssues(err error, prefix string) error {
	issues := IssuesOf(err)
	if len(issues) == 0 {
		return err
	}
	out := make([]Issue, len(issues))
	for i, is := range issues {
		out[i] = Issue{Path: prefix, Message: is.Message}
		if is.Path != "" {
			out[i].Path = prefix + "." + is.Path
		}
	}
	return &Error{Code: CodeOf(err), Message: "validation failed", Issues: out}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IssuesOf returns the field issues attached to err, if any.
func IssuesOf(err error) []Issue {
	var e *Error
	if errors.As(err, &e) {
		return e.Issues
	}
	return nil
}

// CodeOf returns the domain code of err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
