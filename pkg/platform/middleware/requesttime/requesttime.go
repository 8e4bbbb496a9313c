// Package requesttime fixes "now" once per request. Envelope timestamps and
// the created_at/updated_at audit fields written while serving the request
// all read the same instant.
package requesttime

import (
	"context"
	"net/http"
	"time"

	"carehub/pkg/domain"
)

type contextKeyRequestTime struct{}

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithTime(r.Context(), time.Now())))
	})
}

// Now retrieves the request-scoped time, falling back to time.Now() outside
// a request (CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(contextKeyRequestTime{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// Stamp is Now as a canonical wire timestamp.
func Stamp(ctx context.Context) domain.Timestamp {
	return domain.TimestampFromTime(Now(ctx))
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, contextKeyRequestTime{}, t)
}
