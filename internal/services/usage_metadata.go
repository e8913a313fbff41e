package services

import (
	"context"
	"fmt"

	"github.com/yungbote/creatorai-backend/internal/domain/usage"
	"github.com/yungbote/creatorai-backend/internal/platform/clerk"
	"github.com/yungbote/creatorai-backend/internal/platform/logger"
)

// metadataUsageStore keeps counters in the identity provider's private metadata.
// Increment writes current+1, so two concurrent successes for the same user and
// feature can both write the same value.
type metadataUsageStore struct {
	log   *logger.Logger
	clerk clerk.Client
}

func NewMetadataUsageStore(log *logger.Logger, clerkClient clerk.Client) UsageStore {
	return &metadataUsageStore{log: log.With("service", "MetadataUsageStore"), clerk: clerkClient}
}

func (s *metadataUsageStore) Name() string { return "metadata" }

func (s *metadataUsageStore) Load(ctx context.Context, userID string) (usage.Snapshot, error) {
	u, err := s.clerk.GetUser(ctx, userID)
	if err != nil {
		return usage.Snapshot{}, err
	}
	return usage.SnapshotFromMetadata(u.PrivateMetadata), nil
}

func (s *metadataUsageStore) Increment(ctx context.Context, userID string, feature usage.Feature, current int) error {
	key := feature.MetadataKey()
	if key == "" {
		return fmt.Errorf("unknown feature %q", feature)
	}
	if _, err := s.clerk.UpdatePrivateMetadata(ctx, userID, map[string]any{key: current + 1}); err != nil {
		s.log.Warn("usage write-back failed", "user_id", userID, "feature", string(feature), "error", err)
		return err
	}
	return nil
}
