// Command police-patrol serves the police patrol CRUD API behind the schema
// validation gateway.
//
// Run:
//
//	go run ./cmd/police-patrol
//
// Generate or lint the OpenAPI document without a database:
//
//	go run ./cmd/police-patrol -spec                  print JSON to stdout
//	go run ./cmd/police-patrol -spec -yaml -o api.yaml
//	go run ./cmd/police-patrol -check
//
// Then explore:
//
//	GET    http://localhost:3001/api-docs        Swagger UI
//	GET    http://localhost:3001/api-spec.json   OpenAPI document
//	GET    http://localhost:3001/health
//	GET    http://localhost:3001/patrols?page=1&page_size=20&location=harbor
//	POST   http://localhost:3001/patrols
//	GET    http://localhost:3001/patrols/{id}
//	PUT    http://localhost:3001/patrols/{id}
//	DELETE http://localhost:3001/patrols/{id}
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
	"github.com/cityservices/api/internal/patrol"
	"github.com/cityservices/api/internal/server"
	"github.com/cityservices/api/internal/store"
)

var defaults = config.Defaults{
	ServiceName: "police-patrol",
	Port:        3001,
	Database:    "police_patrol",
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
		slog.Error("police patrol service failed", "err", err)
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

	svc := patrol.NewService(repo)
	domain := server.Domain{
		Title:           "Police Patrol API",
		Description:     "Records police patrols with schema-validated requests and responses.",
		RegisterSchemas: patrol.RegisterSchemas,
		Mount:           func(r api.Registrar) { patrol.Mount(r, svc) },
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

func openRepository(ctx context.Context, cfg *config.Config, offline bool) (patrol.Repository, store.Pinger, func(), error) {
	if offline || cfg.DB.Driver == config.DriverMemory {
		repo := patrol.NewMemoryRepository()
		return repo, repo, func() {}, nil
	}

	pool, err := store.Open(ctx, cfg.DB)
	if err != nil {
		return nil, nil, nil, err
	}
	repo := patrol.NewPostgresRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	return repo, pool, pool.Close, nil
}
