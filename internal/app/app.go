// Package app provides application-level wiring and dependency injection
// for the query engine.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"propel-insights/internal/catalog"
	"propel-insights/internal/config"
	"propel-insights/internal/db/repository"
	"propel-insights/internal/executor"
	"propel-insights/internal/registry"
	"propel-insights/internal/service/ask"
	"propel-insights/internal/snapshot"
	"propel-insights/internal/translator"
)

// Deps holds the external dependencies that main() must provide: database
// handles, config, and the logger.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// App holds the fully-wired application: the ask service for the router,
// the tenant repository for auth middleware, and the snapshot job for the
// scheduler.
type App struct {
	Ask      *ask.Service
	Tenants  *repository.TenantRepo
	Catalog  *catalog.Catalog
	Snapshot *snapshot.Job
}

// New wires repositories, the catalog, the registry, and the services from
// the provided deps. The catalog definitions are synced and cross-checked
// against the registry before anything serves a request.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg

	fieldRepo := repository.NewFieldCatalogRepo(deps.WriteDB)
	tenantRepo := repository.NewTenantRepo(deps.WriteDB)

	cat := catalog.New(fieldRepo)
	if err := cat.Sync(ctx); err != nil {
		return nil, fmt.Errorf("sync field catalog: %w", err)
	}

	reg := registry.New()
	if err := reg.Validate(cat.Schema()); err != nil {
		return nil, fmt.Errorf("validate catalog against registry: %w", err)
	}

	gemini := translator.NewGemini(translator.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.LLMTimeout,
	}, deps.Logger.With("component", "gemini"))
	trans := translator.New(gemini, deps.Logger.With("component", "translator"))

	exec := executor.New(deps.ReadDB, reg, cat, deps.Logger.With("component", "executor"))
	askSvc := ask.New(trans, exec, cat, deps.Logger.With("component", "ask"))

	snapJob := snapshot.New(deps.WriteDB, cfg.SnapshotSchedule, deps.Logger.With("component", "snapshot"))

	if cfg.SeedDemo {
		if err := SeedDemo(ctx, deps.WriteDB, tenantRepo, deps.Logger); err != nil {
			deps.Logger.Warn("seed demo data failed", "error", err)
		}
	}

	return &App{
		Ask:      askSvc,
		Tenants:  tenantRepo,
		Catalog:  cat,
		Snapshot: snapJob,
	}, nil
}
