// Package httputil writes envelope responses and maps domain error codes to
// HTTP status codes.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/envelope"
	"carehub/pkg/platform/middleware/requesttime"
)

// WriteJSON writes response as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteSuccess wraps data in a success envelope stamped with the request time.
func WriteSuccess[T any](w http.ResponseWriter, r *http.Request, status int, data T, message string) {
	WriteJSON(w, status, envelope.WrapSuccess(data, message, requesttime.Now(r.Context())))
}

// WriteEnvelope writes a prebuilt envelope, such as a page.
func WriteEnvelope[T any](w http.ResponseWriter, status int, env envelope.Envelope[T]) {
	WriteJSON(w, status, env)
}

// WriteError centralizes domain error translation to HTTP responses. The
// body is always an error envelope; foreign errors become INTERNAL_ERROR
// without leaking their text.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := DomainCodeToHTTPStatus(dErrors.CodeOf(err))
	WriteJSON(w, status, envelope.FromError(err, requesttime.Now(r.Context())))
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeInvalidID, dErrors.CodeInvalidTimestamp, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case dErrors.CodeUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case dErrors.CodeNotImplemented:
		return http.StatusNotImplemented
	case dErrors.CodeMalformedEnvelope, dErrors.CodeUndeclaredStatus:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
