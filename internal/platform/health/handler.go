// Package health serves liveness, readiness and status probes. Bodies use
// the same success envelope as the API so probes and clients share one
// parser.
package health

import (
	"context"
	"maps"
	"net/http"
	"sort"
	"sync"
	"time"

	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/envelope"
	"carehub/pkg/platform/httputil"
	"carehub/pkg/platform/middleware/requesttime"

	"github.com/go-chi/chi/v5"
)

// Version is set at build time via ldflags.
var Version = "dev"

// checkTimeout bounds each readiness check.
const checkTimeout = 2 * time.Second

// CheckFunc reports whether a dependency is usable.
type CheckFunc func(ctx context.Context) error

// Handler provides health check endpoints.
type Handler struct {
	startTime   time.Time
	environment string

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// New creates a new health handler.
func New(environment string) *Handler {
	return &Handler{
		startTime:   time.Now(),
		environment: environment,
		checks:      make(map[string]CheckFunc),
	}
}

// RegisterCheck adds a named health check for the readiness probe.
func (h *Handler) RegisterCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Register mounts health check routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleStatus)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

// LivenessResponse is the data of the liveness probe.
type LivenessResponse struct {
	Status string `json:"status"`
}

// HandleLiveness always answers 200 while the process serves HTTP.
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, r, http.StatusOK, LivenessResponse{Status: "alive"}, "")
}

// ReadinessResponse is the data of the readiness probe.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HandleReadiness runs every registered check. Any failure answers 503 with
// an error envelope whose details list each check.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := make(map[string]CheckFunc, len(h.checks))
	maps.Copy(checks, h.checks)
	h.mu.RUnlock()

	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(checks))
	var failed []dErrors.Issue
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := checks[name](ctx)
		cancel()
		if err != nil {
			results[name] = "down"
			failed = append(failed, dErrors.Issue{Path: name, Message: err.Error()})
			continue
		}
		results[name] = "up"
	}

	if len(failed) > 0 {
		env := envelope.WrapError("NOT_READY", "one or more dependencies are down", failed, requesttime.Now(r.Context()))
		httputil.WriteJSON(w, http.StatusServiceUnavailable, env)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusOK, ReadinessResponse{Status: "ready", Checks: results}, "")
}

// StatusResponse is the data of the general status endpoint.
type StatusResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Environment   string `json:"environment"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// HandleStatus returns version and uptime information.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, r, http.StatusOK, StatusResponse{
		Status:        "healthy",
		Version:       Version,
		Environment:   h.environment,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}, "")
}
