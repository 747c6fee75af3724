package app

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/osisteam/catalogue-backend/internal/data/repos"
	apphttp "github.com/osisteam/catalogue-backend/internal/http"
	"github.com/osisteam/catalogue-backend/internal/observability"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    repos.Set
	Services Services
	Metrics  *observability.Metrics
	Server   *apphttp.Server

	closers      []func() error
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &App{Log: log, Cfg: cfg}

	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel)
	a.Metrics, err = observability.NewMetrics(nil)
	if err != nil {
		log.Warn("metrics init failed (continuing without)", "error", err)
		a.Metrics = nil
	}

	log.Info("Opening database...", "driver", cfg.DBDriver)
	a.DB, err = openDB(log, cfg)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	log.Info("Wiring repos...")
	a.Repos = repos.NewSet(a.DB, log)

	sink, closeSinks, err := wireSinks(log, cfg)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.closers = append(a.closers, closeSinks...)

	a.Services = wireServices(a.DB, log, cfg, a.Repos, sink, a.Metrics)
	a.Server = apphttp.NewServer(wireRouterConfig(log, cfg, a.DB, a.Services, a.Metrics))
	return a, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Serving HTTP", "addr", a.Cfg.HTTPAddr)
	return a.Server.Run(ctx, a.Cfg.HTTPAddr)
}

// Close drains the notifier, then releases sinks, the database and telemetry.
func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.Services.Notifier != nil {
		a.Services.Notifier.Close()
	}
	var errs []error
	for _, fn := range a.closers {
		errs = append(errs, fn())
	}
	a.closers = nil
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if a.otelShutdown != nil {
		errs = append(errs, a.otelShutdown(ctx))
	}
	if err := errors.Join(errs...); err != nil && a.Log != nil {
		a.Log.Warn("shutdown finished with errors", "error", err)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
