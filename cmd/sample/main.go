// Command sample serves the generic resource CRUD API behind the schema
// validation gateway.
//
// Run:
//
//	go run ./cmd/sample
//
// Generate or lint the OpenAPI document without a database:
//
//	go run ./cmd/sample -spec                  print JSON to stdout
//	go run ./cmd/sample -spec -yaml -o api.yaml
//	go run ./cmd/sample -check
//
// Then explore:
//
//	GET    http://localhost:3000/api-docs        Swagger UI
//	GET    http://localhost:3000/api-spec.json   OpenAPI document
//	GET    http://localhost:3000/health
//	GET    http://localhost:3000/resources?page=1&page_size=20&name=alpha
//	POST   http://localhost:3000/resources
//	GET    http://localhost:3000/resources/{id}
//	PUT    http://localhost:3000/resources/{id}
//	DELETE http://localhost:3000/resources/{id}
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cityservices/api"
	"github.com/cityservices/api/internal/config"
	"github.com/cityservices/api/internal/resource"
	"github.com/cityservices/api/internal/server"
	"github.com/cityservices/api/internal/store"
)

var defaults = config.Defaults{
	ServiceName: "sample-service",
	Port:        3000,
	Database:    "sample_service",
}

func main() {
	var opts server.Options
	var envFile string
	flag.BoolVar(&opts.Spec, "spec", false, "Print the OpenAPI spec and exit")
	flag.BoolVar(&opts.YAML, "yaml", false, "Render the OpenAPI document as YAML (with -spec)")
	flag.StringVar(&opts.Out, "o", "", "Output file for the OpenAPI document (requires -spec)")
	flag.BoolVar(&opts.Check, "check", false, "Validate the OpenAPI spec and exit")
	flag.StringVar(&envFile, "env", "", "Environment file to load (default .env)")
	flag.Parse()
	if envFile != "" {
		opts.EnvFiles = []string{envFile}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		slog.Error("sample service failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts server.Options) error {
	cfg, err := config.Load(defaults, opts.EnvFiles...)
	if err != nil {
		return err
	}
	logger := server.NewLogger(cfg.App, os.Stderr)
	slog.SetDefault(logger)

	repo, pinger, closeStore, err := openRepository(ctx, cfg, opts.Offline())
	if err != nil {
		return err
	}
	defer closeStore()

	svc := resource.NewService(repo)
	domain := server.Domain{
		Title:           "Sample Service API",
		Description:     "Generic resource CRUD service with schema-validated requests and responses.",
		RegisterSchemas: resource.RegisterSchemas,
		Mount:           func(r api.Registrar) { resource.Mount(r, svc) },
		Seed:            svc.Seed,
		Store:           pinger,
	}

	r, err := server.NewRouter(cfg, domain, logger, server.NewRegistry())
	if err != nil {
		return err
	}
	if opts.Offline() {
		return server.Document(r, opts, os.Stdout)
	}
	return server.Run(ctx, cfg, domain, r, logger)
}

func openRepository(ctx context.Context, cfg *config.Config, offline bool) (resource.Repository, store.Pinger, func(), error) {
	if offline || cfg.DB.Driver == config.DriverMemory {
		repo := resource.NewMemoryRepository()
		return repo, repo, func() {}, nil
	}

	pool, err := store.Open(ctx, cfg.DB)
	if err != nil {
		return nil, nil, nil, err
	}
	repo := resource.NewPostgresRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	return repo, pool, pool.Close, nil
}
