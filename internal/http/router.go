package http

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/creatorai-backend/internal/http/handlers"
	httpMW "github.com/yungbote/creatorai-backend/internal/http/middleware"
	"github.com/yungbote/creatorai-backend/internal/http/response"
	"github.com/yungbote/creatorai-backend/internal/observability"
	"github.com/yungbote/creatorai-backend/internal/platform/apierr"
	"github.com/yungbote/creatorai-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log          *logger.Logger
	Metrics      *observability.Metrics
	ServiceName  string
	AllowOrigins []string
	MaxMultipart int64
	// ExposeMetrics mounts /metrics on this router instead of a separate listener.
	ExposeMetrics  bool
	AuthMiddleware *httpMW.AuthMiddleware

	AIHandler     *httpH.AIHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	// Panics still answer with the 200 envelope.
	r.Use(gin.CustomRecovery(func(c *gin.Context, rec any) {
		err := apierr.Unexpected(fmt.Errorf("panic: %v", rec))
		_ = c.Error(err)
		response.AbortWithError(c, err)
	}))
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowOrigins))
	if cfg.MaxMultipart > 0 {
		r.MaxMultipartMemory = cfg.MaxMultipart
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	if cfg.ExposeMetrics && cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	ai := r.Group("/api/ai")
	{
		if cfg.AuthMiddleware != nil {
			ai.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AIHandler != nil {
			ai.POST("/generate-article", cfg.AIHandler.GenerateArticle)
			ai.POST("/generate-blog-title", cfg.AIHandler.GenerateBlogTitle)
			ai.POST("/generate-image", cfg.AIHandler.GenerateImage)
			ai.POST("/remove-image-background", cfg.AIHandler.RemoveImageBackground)
			ai.POST("/remove-image-object", cfg.AIHandler.RemoveImageObject)
			ai.POST("/resume-review", cfg.AIHandler.ResumeReview)
		}
	}

	return r
}
