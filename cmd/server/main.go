package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carehub/contracts"
	accountinghandler "carehub/internal/accounting/handler"
	accountingservice "carehub/internal/accounting/service"
	accountingstore "carehub/internal/accounting/store"
	"carehub/internal/platform/config"
	"carehub/internal/platform/database"
	"carehub/internal/platform/health"
	"carehub/internal/platform/logger"
	"carehub/internal/platform/metrics"
	residenthandler "carehub/internal/resident/handler"
	residentservice "carehub/internal/resident/service"
	residentstore "carehub/internal/resident/store"
	httptransport "carehub/internal/transport/http"
	"carehub/migrations"
	"carehub/pkg/platform/middleware/request"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the domain service packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)

	log.Info("initializing carehub",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"validate_responses", cfg.ValidateResponses,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tree, err := contracts.New()
	if err != nil {
		return fmt.Errorf("build contract tree: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	domainMetrics := metrics.New(reg)

	healthHandler := health.New(cfg.Environment)
	residents, closeDB, err := openResidentStore(ctx, cfg, log, healthHandler)
	if err != nil {
		return err
	}
	defer closeDB()

	binder := httptransport.NewBinder(tree, log,
		httptransport.WithMetrics(httptransport.NewMetrics(reg)),
		httptransport.WithResponseVerification(cfg.ValidateResponses),
	)

	residentSvc := residentservice.New(residents,
		residentservice.WithLogger(log),
		residentservice.WithMetrics(domainMetrics),
	)
	if err := residenthandler.New(residentSvc, log).Register(binder); err != nil {
		return fmt.Errorf("register resident handlers: %w", err)
	}

	invoiceSvc := accountingservice.New(accountingstore.NewInMemory(),
		accountingservice.WithLogger(log),
		accountingservice.WithMetrics(domainMetrics),
	)
	if err := accountinghandler.New(invoiceSvc).Register(binder); err != nil {
		return fmt.Errorf("register accounting handlers: %w", err)
	}

	if unbound := binder.Unbound(); len(unbound) > 0 {
		log.Info("operations without handlers answer 501", "count", len(unbound), "operations", unbound)
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Binder:       binder,
		Health:       healthHandler,
		Logger:       log,
		Gatherer:     reg,
		HTTPMetrics:  request.NewMetrics(reg),
		MaxBodyBytes: cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr, "operations", tree.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		return err
	}
	log.Info("server stopped")
	return nil
}

// openResidentStore picks PostgreSQL when DATABASE_URL is set and the
// in-memory store otherwise.
func openResidentStore(ctx context.Context, cfg config.Server, log *slog.Logger, h *health.Handler) (residentservice.Store, func(), error) {
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(ctx, dbCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if pool == nil {
		log.Info("no database configured, residents are kept in memory")
		return residentstore.NewInMemory(), func() {}, nil
	}

	closePool := func() {
		if err := pool.Close(); err != nil {
			log.Error("close database", "error", err)
		}
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, pool.DB(), migrations.FS); err != nil {
			closePool()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		log.Info("database schema applied")
	}
	h.RegisterCheck("database", pool.Health)
	return residentstore.NewPostgres(pool.DB()), closePool, nil
}
