// Package app wires configuration, storage and the cost engine into the
// components shared by the CLI and the HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/Simplici0/facecost/internal/compare"
	"github.com/Simplici0/facecost/internal/config"
	"github.com/Simplici0/facecost/internal/costing"
	"github.com/Simplici0/facecost/internal/db"
	"github.com/Simplici0/facecost/internal/engine"
	"github.com/Simplici0/facecost/internal/factors"
	"github.com/Simplici0/facecost/internal/httpapi"
	"github.com/Simplici0/facecost/internal/migrations"
	"github.com/Simplici0/facecost/internal/results"
	"github.com/Simplici0/facecost/internal/seed"
)

// Options changes how New builds the app.
type Options struct {
	// NoDatabase runs on the built-in factor tables only. Nothing is stored.
	NoDatabase bool
}

// App holds the components built from one configuration. Fields left nil
// are disabled in that configuration.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	DB       *sqlx.DB
	Catalog  *factors.SQLStore
	Results  *results.Repository
	Resolver *factors.Resolver
	Engine   *engine.Engine
	Runner   *compare.Runner
}

// New opens and migrates the database, seeds the built-in factors when
// configured to, and builds the engine.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	var store factors.Store = factors.NewMemoryStore()
	if !opts.NoDatabase {
		database, err := Open(cfg)
		if err != nil {
			return nil, err
		}
		a.DB = database

		if cfg.SeedFactors {
			stats, err := seed.Run(ctx, database)
			if err != nil {
				database.Close()
				return nil, fmt.Errorf("seed factors: %w", err)
			}
			logger.Info("seed.completed", "inserts", stats.Inserts)
		}

		a.Catalog = factors.NewSQLStore(database)
		store = a.Catalog
	}

	a.Resolver = factors.NewResolver(store,
		factors.WithCacheTTL(cfg.FactorCacheTTL),
		factors.WithCacheSize(cfg.FactorCacheSize),
		factors.WithLogger(logger),
	)

	calcOpts := []costing.Option{costing.WithLogger(logger)}
	engineOpts := []engine.Option{engine.WithLogger(logger)}
	if a.DB != nil && cfg.PersistResults {
		a.Results = results.NewRepository(a.DB)
		calcOpts = append(calcOpts, costing.WithRecorder(a.Results))
		engineOpts = append(engineOpts, engine.WithSessions(a.Results))
	}

	a.Engine = engine.New(costing.NewCalculator(a.Resolver, calcOpts...), engineOpts...)
	a.Runner = compare.NewRunner(a.Engine, compare.WithWorkers(cfg.CompareWorkers), compare.WithLogger(logger))

	return a, nil
}

// Open connects to the configured database and applies pending migrations.
func Open(cfg config.Config) (*sqlx.DB, error) {
	database, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := migrations.Up(database.DB, cfg.DBDriver); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return database, nil
}

// Router returns the HTTP API backed by the app.
func (a *App) Router() http.Handler {
	deps := httpapi.Deps{
		Engine:     a.Engine,
		Comparer:   a.Runner,
		Cache:      a.Resolver,
		AdminToken: a.Config.AdminToken,
		Logger:     a.Logger,
	}
	// Leave the optional deps as nil interfaces when unset.
	if a.DB != nil {
		deps.DB = a.DB
		deps.Factors = a.Catalog
	}
	if a.Results != nil {
		deps.Sessions = a.Results
	}
	return httpapi.NewRouter(deps)
}

// Close releases the database, if one is open.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
