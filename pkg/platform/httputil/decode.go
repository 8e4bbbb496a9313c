package httputil

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/requestcontext"
)

// ReadBody drains the request body. On failure it writes an error envelope
// and returns false: 413 when BodyLimit tripped, 400 otherwise.
//
// Usage:
//
//	raw, ok := httputil.ReadBody(w, r, h.logger)
//	if !ok {
//	    return
//	}
func ReadBody(w http.ResponseWriter, r *http.Request, logger *slog.Logger) ([]byte, bool) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, true
	}
	raw, err := io.ReadAll(r.Body)
	if err == nil {
		return raw, true
	}

	ctx := r.Context()
	logger.WarnContext(ctx, "failed to read request body",
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteError(w, r, dErrors.Newf(dErrors.CodePayloadTooLarge, "request body exceeds %d bytes", tooLarge.Limit))
		return nil, false
	}
	WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "unreadable request body"))
	return nil, false
}
