// Package server assembles a CRUD microservice: the schema gateway, the
// middleware chain, the API documentation and the HTTP listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/cityservices/api"
	"github.com/cityservices/api/internal/config"
	"github.com/cityservices/api/internal/health"
	"github.com/cityservices/api/internal/store"
)

// Documentation endpoints.
const (
	SpecPath     = "/api-spec.json"
	SpecYAMLPath = "/api-spec.yaml"
	DocsPath     = "/api-docs"
	MetricsPath  = "/metrics"
)

// Domain is the service-specific part of a microservice.
type Domain struct {
	Title       string
	Description string

	// RegisterSchemas adds the domain's route schemas.
	RegisterSchemas func(*api.SchemaRegistry) error
	// Mount registers the domain's handlers.
	Mount func(api.Registrar)
	// Seed inserts n sample records. Optional.
	Seed func(ctx context.Context, n int) error
	// Store backs the health check. Optional.
	Store store.Pinger
}

// NewLogger returns a JSON logger in production and a text logger
// otherwise, both at the configured level.
func NewLogger(cfg config.AppConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler
	if cfg.IsDevelopment() {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h).With("service", cfg.Name)
}

// NewRouter builds the router of a service. Routes whose schemas fail to
// derive, or collide after normalization, abort startup.
func NewRouter(cfg *config.Config, d Domain, logger *slog.Logger, reg *prometheus.Registry) (*api.Router, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics := api.NewMetrics(reg, metricsNamespace(cfg.App.Name))

	schemas := api.NewSchemaRegistry()
	if err := health.RegisterSchemas(schemas); err != nil {
		return nil, fmt.Errorf("health schemas: %w", err)
	}
	if err := d.RegisterSchemas(schemas); err != nil {
		return nil, fmt.Errorf("%s schemas: %w", cfg.App.Name, err)
	}

	gw, err := api.NewGateway(schemas, api.WithRejectionHook(func(key api.RouteKey, verr *api.ValidationError) {
		metrics.ObserveRejection(key, verr)
		level := slog.LevelDebug
		if verr.Source == api.SourceResponse {
			level = slog.LevelWarn
		}
		logger.Log(context.Background(), level, "validation failed",
			"route", key.String(),
			"source", string(verr.Source),
			"issues", len(verr.Details),
			"error", verr.Error(),
		)
	}))
	if err != nil {
		return nil, err
	}

	r := api.New(
		api.WithTitle(d.Title),
		api.WithVersion(cfg.App.Version),
		api.WithAPIDescription(d.Description),
		api.WithGateway(gw),
	)

	cors := api.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins

	// Timeout replaces the request value, so it runs ahead of the
	// middleware that reads r.Pattern after the mux has matched.
	r.Use(
		api.RequestID(),
		api.Recovery(),
		api.Timeout(cfg.HTTP.RequestTimeout),
		api.Logger(logger),
		metrics.Middleware(),
		api.Secure(),
		api.CORS(cors),
		api.RateLimit(api.RateLimitConfig{
			Rate:  cfg.HTTP.RateLimitRPS,
			Burst: cfg.HTTP.RateLimitBurst,
		}),
		api.BodyLimit(cfg.HTTP.BodyLimitBytes),
	)

	health.Mount(r, health.NewChecker(cfg.App.Name, cfg.App.Version, d.Store))
	d.Mount(r)

	for _, k := range r.UnmountedSchemas() {
		logger.Warn("schema registered for a route that is not mounted", "route", k.String())
	}

	r.ServeSpec(SpecPath)
	r.ServeSpecYAML(SpecYAMLPath)
	r.ServeDocs(DocsPath, api.WithDocsTitle(d.Title), api.WithDocsSpecURL(SpecPath))
	r.Handle("GET "+MetricsPath, metrics.Handler())

	return r, nil
}

// Run seeds the store in development and serves until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, d Domain, r *api.Router, logger *slog.Logger) error {
	if cfg.App.IsDevelopment() && d.Seed != nil && cfg.SeedCount > 0 {
		if err := d.Seed(ctx, cfg.SeedCount); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logger.InfoContext(ctx, "seeded store", "count", cfg.SeedCount)
	}

	logger.InfoContext(ctx, "starting server",
		"addr", cfg.App.Addr(),
		"env", cfg.App.Env,
		"version", cfg.App.Version,
		"docs", DocsPath,
	)

	err := r.ListenAndServe(ctx, cfg.App.Addr())
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.InfoContext(ctx, "server stopped")
	return nil
}

// NewRegistry returns a Prometheus registry carrying the Go runtime and
// process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func metricsNamespace(service string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, service)
}
