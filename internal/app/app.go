// Package app provides the main application struct for centralized
// dependency management and lifecycle control of the document gateway.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"traindocs/config"
	"traindocs/internal/apiclient"
	"traindocs/internal/audit"
	"traindocs/internal/cache"
	"traindocs/internal/docs"
	"traindocs/internal/server"
	"traindocs/internal/viewer"
)

// App represents the main application with all its dependencies.
// It provides centralized lifecycle management for all components.
type App struct {
	config  *config.Config
	cache   cache.Cache
	audit   audit.Recorder
	service *docs.Service
	viewers *viewer.Registry
	server  *server.Server

	shutdownMu sync.Mutex
	shutdown   bool
}

// New creates a new App with all dependencies initialized.
// The caller must call Shutdown to release resources.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	app := &App{config: cfg}

	fileCache, err := newCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	app.cache = fileCache

	recorder, err := audit.New(ctx, audit.Options{
		Enabled:       cfg.Audit.Enabled,
		Backend:       cfg.Audit.Backend,
		DSN:           cfg.Audit.DSN,
		RetentionDays: cfg.Audit.RetentionDays,
	})
	if err != nil {
		closeErr := fileCache.Close()
		if closeErr != nil {
			return nil, fmt.Errorf("failed to initialize audit trail: %w (also: cache close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize audit trail: %w", err)
	}
	app.audit = recorder

	client := apiclient.New(apiclient.DefaultConfig(cfg.Platform.BaseURL, cfg.Platform.Token))

	opts := []docs.Option{docs.WithAudit(recorder)}
	if cfg.Metrics.Enabled {
		opts = append(opts, docs.WithMetrics(docs.NewMetrics(prometheus.DefaultRegisterer)))
	}
	app.service = docs.NewService(client, fileCache, opts...)
	app.viewers = viewer.NewRegistry(app.service, cfg.Viewer.SessionTTL)

	app.logStartupInfo()

	app.server = server.New(app.service, app.viewers, &server.Config{
		MasterKey:       cfg.Server.MasterKey,
		MetricsEnabled:  cfg.Metrics.Enabled,
		MetricsEndpoint: cfg.Metrics.Endpoint,
		BodySizeLimit:   cfg.Server.BodySizeLimit,
	})

	return app, nil
}

// newCache selects the cache backend from configuration.
func newCache(cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return cache.NewRedisCache(cache.RedisConfig{
			URL: cfg.Cache.RedisURL,
			TTL: cfg.Cache.TTL,
		})
	default:
		return cache.NewMemoryCache(cfg.Cache.TTL), nil
	}
}

// Service returns the file retrieval service.
func (a *App) Service() *docs.Service {
	return a.service
}

// Start starts the HTTP server on the given address.
// This is a blocking call that returns when the server stops.
func (a *App) Start(addr string) error {
	if a.server == nil {
		return fmt.Errorf("server is not initialized")
	}
	slog.Info("starting server", "address", addr)
	if err := a.server.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
			return nil
		}
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully tears down app components in dependency order:
// the HTTP server first (stop accepting requests), then the audit
// recorder, then the cache.
//
// Shutdown is idempotent and safe for repeated calls; after the first
// call, subsequent calls are no-ops. It attempts every close step,
// aggregates failures, and returns a joined error if any step fails.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	slog.Info("shutting down application...")

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}

	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			slog.Error("audit recorder close error", "error", err)
			errs = append(errs, fmt.Errorf("audit close: %w", err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			slog.Error("cache close error", "error", err)
			errs = append(errs, fmt.Errorf("cache close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	slog.Info("application shutdown complete")
	return nil
}

// logStartupInfo logs the application configuration on startup.
func (a *App) logStartupInfo() {
	cfg := a.config

	if cfg.Server.MasterKey == "" {
		slog.Warn("SECURITY WARNING: TRAINDOCS_MASTER_KEY not set - server running in UNSAFE MODE",
			"security_risk", "unauthenticated access allowed",
			"recommendation", "set TRAINDOCS_MASTER_KEY environment variable to secure this gateway")
	} else {
		slog.Info("authentication enabled", "mode", "master_key")
	}

	slog.Info("cache configured", "backend", cfg.Cache.Backend, "ttl", cfg.Cache.TTL)

	if cfg.Audit.Enabled {
		slog.Info("audit trail enabled",
			"backend", cfg.Audit.Backend,
			"retention_days", cfg.Audit.RetentionDays,
		)
	} else {
		slog.Info("audit trail disabled")
	}

	if cfg.Metrics.Enabled {
		slog.Info("prometheus metrics enabled", "endpoint", cfg.Metrics.Endpoint)
	} else {
		slog.Info("prometheus metrics disabled")
	}
}
