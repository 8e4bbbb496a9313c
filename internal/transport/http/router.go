package httptransport

import (
	"log/slog"
	"net/http"

	"carehub/internal/platform/health"
	"carehub/pkg/platform/middleware/request"
	"carehub/pkg/platform/middleware/requesttime"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig gathers what NewRouter mounts.
type RouterConfig struct {
	Binder       *Binder
	Health       *health.Handler
	Logger       *slog.Logger
	Gatherer     prometheus.Gatherer
	HTTPMetrics  *request.Metrics
	MaxBodyBytes int64
}

// NewRouter wires all public endpoints with middleware: recovery first so a
// panic anywhere below still produces an envelope.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(request.ClientIP)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.LatencyMiddleware(cfg.HTTPMetrics))
	r.Use(request.ContentTypeJSON)
	if cfg.MaxBodyBytes > 0 {
		r.Use(request.BodyLimit(cfg.MaxBodyBytes))
	}

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	if cfg.Health != nil {
		cfg.Health.Register(r)
	}
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	if cfg.Binder != nil {
		cfg.Binder.Mount(r)
	}
	return r
}
