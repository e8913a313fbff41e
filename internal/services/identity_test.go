package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/creatorai-backend/internal/domain/usage"
	"github.com/yungbote/creatorai-backend/internal/platform/clerk"
	"github.com/yungbote/creatorai-backend/internal/platform/logger"
)

type stubVerifier struct {
	sess   *clerk.Session
	err    error
	tokens []string
}

func (s *stubVerifier) Verify(token string) (*clerk.Session, error) {
	s.tokens = append(s.tokens, token)
	if s.err != nil {
		return nil, s.err
	}
	return s.sess, nil
}

func TestResolveFreeCaller(t *testing.T) {
	store := NewMemoryUsageStore()
	store.Set("user_1", usage.FeatureArticle, 3)
	v := &stubVerifier{sess: &clerk.Session{UserID: "user_1", SessionID: "sess_1", Plans: []string{"u:free_user"}}}
	svc := NewIdentityService(logger.NewNop(), v, store, IdentityConfig{PremiumPlan: "premium"})

	rd, err := svc.Resolve(context.Background(), "Bearer tok123")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok123"}, v.tokens)
	assert.Equal(t, "user_1", rd.UserID)
	assert.Equal(t, "sess_1", rd.SessionID)
	assert.Equal(t, usage.PlanFree, rd.Plan)
	assert.Equal(t, 3, rd.Usage.Article)
}

func TestResolvePremiumCaller(t *testing.T) {
	v := &stubVerifier{sess: &clerk.Session{UserID: "user_2", Plans: []string{"u:premium"}}}
	svc := NewIdentityService(logger.NewNop(), v, NewMemoryUsageStore(), IdentityConfig{})

	rd, err := svc.Resolve(context.Background(), "Bearer tok")
	require.NoError(t, err)
	assert.Equal(t, usage.PlanPremium, rd.Plan)
}

func TestResolveMissingToken(t *testing.T) {
	v := &stubVerifier{}
	svc := NewIdentityService(logger.NewNop(), v, NewMemoryUsageStore(), IdentityConfig{})

	_, err := svc.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, clerk.ErrMissingToken)
	assert.Empty(t, v.tokens)
}

func TestResolveInvalidToken(t *testing.T) {
	v := &stubVerifier{err: clerk.ErrInvalidToken}
	svc := NewIdentityService(logger.NewNop(), v, NewMemoryUsageStore(), IdentityConfig{})

	_, err := svc.Resolve(context.Background(), "Bearer nope")
	assert.ErrorIs(t, err, clerk.ErrInvalidToken)
}

func TestResolveUsageLoadFailure(t *testing.T) {
	fc := newFakeClerk()
	fc.getErr = errors.New("clerk unavailable")
	v := &stubVerifier{sess: &clerk.Session{UserID: "user_1"}}
	svc := NewIdentityService(logger.NewNop(), v, NewMetadataUsageStore(logger.NewNop(), fc), IdentityConfig{})

	_, err := svc.Resolve(context.Background(), "Bearer tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clerk unavailable")
}

func TestResolveDevBypass(t *testing.T) {
	store := NewMemoryUsageStore()
	store.Set("dev_user", usage.FeatureRemoveBg, 5)
	svc := NewIdentityService(logger.NewNop(), nil, store, IdentityConfig{DevUser: "dev_user", DevPlan: usage.PlanPremium})

	rd, err := svc.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "dev_user", rd.UserID)
	assert.Equal(t, usage.PlanPremium, rd.Plan)
	assert.Equal(t, 5, rd.Usage.RemoveBg)
}
