package services

import (
	"context"
	"sync"

	"github.com/yungbote/creatorai-backend/internal/domain/usage"
)

// UsageStore holds free-tier counters.
type UsageStore interface {
	// Load returns the caller's counters; missing counters read as zero.
	Load(ctx context.Context, userID string) (usage.Snapshot, error)
	// Increment records one successful free-tier use. current is the counter value
	// read at the start of the request.
	Increment(ctx context.Context, userID string, feature usage.Feature, current int) error
	Name() string
}

// MemoryUsageStore keeps counters in process memory. Used for local runs without
// an identity provider and in tests.
type MemoryUsageStore struct {
	mu   sync.Mutex
	data map[string]usage.Snapshot
}

func NewMemoryUsageStore() *MemoryUsageStore {
	return &MemoryUsageStore{data: map[string]usage.Snapshot{}}
}

func (s *MemoryUsageStore) Name() string { return "memory" }

func (s *MemoryUsageStore) Load(_ context.Context, userID string) (usage.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[userID], nil
}

func (s *MemoryUsageStore) Increment(_ context.Context, userID string, feature usage.Feature, current int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[userID] = s.data[userID].With(feature, current+1)
	return nil
}

// Set overwrites a counter.
func (s *MemoryUsageStore) Set(userID string, feature usage.Feature, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[userID] = s.data[userID].With(feature, n)
}
