package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/creatorai-backend/internal/data/db"
	httpserver "github.com/yungbote/creatorai-backend/internal/http"
	"github.com/yungbote/creatorai-backend/internal/observability"
	"github.com/yungbote/creatorai-backend/internal/platform/config"
	"github.com/yungbote/creatorai-backend/internal/platform/logger"
	"github.com/yungbote/creatorai-backend/internal/platform/redisx"
)

type App struct {
	Log      *logger.Logger
	Cfg      *config.Config
	Metrics  *observability.Metrics
	Postgres *db.PostgresService
	Redis    *goredis.Client
	Clients  Clients
	Services Services
	Server   *httpserver.Server

	shutdownTracing func(context.Context) error
}

// New wires the process from an already loaded config.
func New(ctx context.Context, log *logger.Logger, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	a := &App{Log: log, Cfg: cfg}

	shutdown, err := observability.InitTracing(ctx, log, cfg.Otel, cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.shutdownTracing = shutdown

	if cfg.Metrics.Enabled {
		a.Metrics = observability.NewMetrics()
	}

	log.Info("Connecting to Postgres...")
	pg, err := db.NewPostgresService(log, cfg.Postgres)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	a.Postgres = pg
	if cfg.Postgres.AutoMigrate {
		if err := db.AutoMigrateAll(pg.DB()); err != nil {
			a.Close()
			return nil, fmt.Errorf("postgres automigrate: %w", err)
		}
	}

	if cfg.Redis.Enabled() {
		rdb, err := redisx.New(ctx, log, cfg.Redis)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}
		a.Redis = rdb
	}

	clients, err := wireClients(ctx, log, cfg, a.Metrics)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Clients = clients

	services, err := wireServices(log, cfg, a.Metrics, pg.DB(), a.Redis, clients)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Services = services

	a.Server = wireHTTP(log, cfg, a)
	return a, nil
}

// Run serves HTTP, and metrics on their own listener when configured, until ctx ends.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Server.Run(gctx, a.shutdownGrace())
	})
	if a.Metrics != nil && a.Cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return a.Metrics.StartServer(gctx, a.Log, a.Cfg.Metrics.Addr)
		})
	}
	return g.Wait()
}

func (a *App) shutdownGrace() time.Duration {
	if a.Cfg.Server.ShutdownTimeout > 0 {
		return a.Cfg.Server.ShutdownTimeout
	}
	return 15 * time.Second
}

// Close releases clients in reverse order of construction. Safe on a partial App.
func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close(a.Log)
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warn("redis close failed", "error", err)
		}
	}
	if a.Postgres != nil {
		if err := a.Postgres.Close(); err != nil {
			a.Log.Warn("postgres close failed", "error", err)
		}
	}
	if a.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdownTracing(ctx); err != nil {
			a.Log.Warn("tracer shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}
