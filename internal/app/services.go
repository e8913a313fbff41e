package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/creatorai-backend/internal/data/repos/creations"
	"github.com/yungbote/creatorai-backend/internal/domain/usage"
	"github.com/yungbote/creatorai-backend/internal/observability"
	"github.com/yungbote/creatorai-backend/internal/platform/config"
	"github.com/yungbote/creatorai-backend/internal/platform/logger"
	"github.com/yungbote/creatorai-backend/internal/services"
)

type Services struct {
	Usage      services.UsageStore
	Pipeline   services.CreationPipeline
	Identity   services.IdentityService
	Generation services.GenerationService
}

func wireServices(log *logger.Logger, cfg *config.Config, metrics *observability.Metrics, gdb *gorm.DB, rdb *goredis.Client, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	store, err := wireUsageStore(log, cfg, rdb, clients)
	if err != nil {
		return Services{}, err
	}
	log.Info("usage store selected", "store", store.Name())

	features := services.FeatureTableFromConfig(cfg.Features)
	pipeline := services.NewCreationPipeline(log, metrics, features, creations.NewCreationRepo(gdb, log), store)

	idCfg := services.IdentityConfig{PremiumPlan: cfg.Clerk.PremiumPlan}
	var verifier services.SessionVerifier
	if cfg.AuthBypass() {
		log.Warn("auth disabled; all requests resolve to the dev user", "user_id", cfg.Auth.DevUser)
		idCfg.DevUser = cfg.Auth.DevUser
		idCfg.DevPlan = usage.Plan(cfg.Auth.DevPlan)
	} else {
		verifier = clients.Verifier
	}

	return Services{
		Usage:    store,
		Pipeline: pipeline,
		Identity: services.NewIdentityService(log, verifier, store, idCfg),
		Generation: services.NewGenerationService(log, pipeline, clients.LLM, clients.ClipDrop, clients.Cloudinary, clients.DocExtract, services.GenerationConfig{
			ArticleDefaultTokens: cfg.Features.ArticleDefaultTokens,
			BlogTitleMaxTokens:   cfg.Features.BlogTitleMaxTokens,
			ResumeMaxTokens:      cfg.Features.ResumeMaxTokens,
			ResumeMaxBytes:       cfg.Features.ResumeMaxBytes,
		}),
	}, nil
}

func wireUsageStore(log *logger.Logger, cfg *config.Config, rdb *goredis.Client, clients Clients) (services.UsageStore, error) {
	switch cfg.Usage.Store {
	case config.UsageStoreRedis:
		if rdb == nil {
			return nil, fmt.Errorf("usage store redis requires redis.addr")
		}
		return services.NewRedisUsageStore(log, rdb, cfg.Redis.KeyPrefix), nil
	default:
		if clients.Clerk == nil {
			if cfg.AuthBypass() {
				return services.NewMemoryUsageStore(), nil
			}
			return nil, fmt.Errorf("usage store metadata requires clerk.secret_key")
		}
		return services.NewMetadataUsageStore(log, clients.Clerk), nil
	}
}
