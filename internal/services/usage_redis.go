package services

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/creatorai-backend/internal/domain/usage"
	"github.com/yungbote/creatorai-backend/internal/platform/logger"
	"github.com/yungbote/creatorai-backend/internal/platform/redisx"
)

// redisUsageStore keeps one hash per user, fields named like the metadata keys.
// Increment uses HINCRBY so concurrent successes are all counted.
type redisUsageStore struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
}

func NewRedisUsageStore(log *logger.Logger, rdb goredis.UniversalClient, prefix string) UsageStore {
	return &redisUsageStore{log: log.With("service", "RedisUsageStore"), rdb: rdb, prefix: prefix}
}

func (s *redisUsageStore) Name() string { return "redis" }

func (s *redisUsageStore) key(userID string) string {
	return redisx.Key(s.prefix, "usage", userID)
}

func (s *redisUsageStore) Load(ctx context.Context, userID string) (usage.Snapshot, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return usage.Snapshot{}, fmt.Errorf("redis usage load: %w", err)
	}
	md := make(map[string]any, len(fields))
	for k, v := range fields {
		md[k] = v
	}
	return usage.SnapshotFromMetadata(md), nil
}

func (s *redisUsageStore) Increment(ctx context.Context, userID string, feature usage.Feature, _ int) error {
	field := feature.MetadataKey()
	if field == "" {
		return fmt.Errorf("unknown feature %q", feature)
	}
	n, err := s.rdb.HIncrBy(ctx, s.key(userID), field, 1).Result()
	if err != nil {
		s.log.Warn("usage increment failed", "user_id", userID, "feature", string(feature), "error", err)
		return fmt.Errorf("redis usage increment: %w", err)
	}
	s.log.Debug("usage incremented", "user_id", userID, "feature", string(feature), "count", n)
	return nil
}
