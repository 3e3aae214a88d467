// Package app wires configuration, storage, services and the HTTP router.
// The server binary and the serverless entry share it.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/wadjakorntonsri/linkpage/pkg/adapters/handler"
	"github.com/wadjakorntonsri/linkpage/pkg/adapters/repository/sqlstore"
	"github.com/wadjakorntonsri/linkpage/pkg/cache"
	"github.com/wadjakorntonsri/linkpage/pkg/config"
	"github.com/wadjakorntonsri/linkpage/pkg/core/services"
	"github.com/wadjakorntonsri/linkpage/pkg/logger"
)

type App struct {
	Store    *sqlstore.Store
	Cache    *cache.PageCache
	Services handler.Services
	Handler  http.Handler
	Log      *logger.Logger
}

// NewLogger builds the process logger from config.
func NewLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(logger.Options{
		Level:         cfg.LogLevel,
		HumanReadable: cfg.LogFormat == "console",
	})
}

// New opens the database, applies migrations and builds the router.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	store, err := sqlstore.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	pc := cache.New(cfg.PublicCacheSize, cfg.PublicCacheTTL)
	svc := handler.Services{
		Links:     services.NewLinkService(store, store, pc, log),
		Pages:     services.NewPageService(store, store, store, pc, log),
		Profiles:  services.NewProfileService(store, pc, log),
		Analytics: services.NewAnalyticsService(store, store, store, cfg.AnalyticsIPSalt, log),
	}

	return &App{
		Store:    store,
		Cache:    pc,
		Services: svc,
		Handler:  handler.NewRouter(cfg, svc, log),
		Log:      log,
	}, nil
}

func (a *App) Close() error {
	a.Cache.Purge()
	return a.Store.Close()
}
