package app

import (
	"context"

	httpserver "github.com/yungbote/creatorai-backend/internal/http"
	httpH "github.com/yungbote/creatorai-backend/internal/http/handlers"
	httpMW "github.com/yungbote/creatorai-backend/internal/http/middleware"
	"github.com/yungbote/creatorai-backend/internal/platform/config"
	"github.com/yungbote/creatorai-backend/internal/platform/logger"
)

func wireHTTP(log *logger.Logger, cfg *config.Config, a *App) *httpserver.Server {
	checks := []httpH.ReadinessCheck{{Name: "postgres", Check: a.Postgres.Ping}}
	if a.Redis != nil {
		checks = append(checks, httpH.ReadinessCheck{Name: "redis", Check: func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		}})
	}

	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
		if serviceName == "" {
			serviceName = "creatorai-backend"
		}
	}

	return httpserver.NewServer(log, cfg.Server, httpserver.RouterConfig{
		Log:            log,
		Metrics:        a.Metrics,
		ServiceName:    serviceName,
		AllowOrigins:   cfg.CORS.AllowOrigins,
		ExposeMetrics:  cfg.Metrics.Addr == "",
		AuthMiddleware: httpMW.NewAuthMiddleware(log, a.Services.Identity),
		AIHandler:      httpH.NewAIHandler(log, a.Services.Generation),
		HealthHandler:  httpH.NewHealthHandler(checks...),
	})
}
