package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/creatorai-backend/internal/domain/usage"
	"github.com/yungbote/creatorai-backend/internal/platform/clerk"
	"github.com/yungbote/creatorai-backend/internal/platform/ctxutil"
	"github.com/yungbote/creatorai-backend/internal/platform/logger"
)

// SessionVerifier is the part of clerk.Verifier the identity service needs.
type SessionVerifier interface {
	Verify(token string) (*clerk.Session, error)
}

// IdentityService turns an Authorization header into the caller's id, plan and
// usage snapshot.
type IdentityService interface {
	Resolve(ctx context.Context, authorization string) (*ctxutil.RequestData, error)
}

type IdentityConfig struct {
	PremiumPlan string
	// DevUser, when set, skips token verification and resolves every request to
	// this user. Only wired for local runs.
	DevUser string
	DevPlan usage.Plan
}

type identityService struct {
	log      *logger.Logger
	verifier SessionVerifier
	store    UsageStore
	cfg      IdentityConfig
}

func NewIdentityService(log *logger.Logger, verifier SessionVerifier, store UsageStore, cfg IdentityConfig) IdentityService {
	if strings.TrimSpace(cfg.PremiumPlan) == "" {
		cfg.PremiumPlan = string(usage.PlanPremium)
	}
	if cfg.DevPlan == "" {
		cfg.DevPlan = usage.PlanFree
	}
	return &identityService{
		log:      log.With("service", "IdentityService"),
		verifier: verifier,
		store:    store,
		cfg:      cfg,
	}
}

func (s *identityService) Resolve(ctx context.Context, authorization string) (*ctxutil.RequestData, error) {
	if s.cfg.DevUser != "" {
		return s.withUsage(ctx, &ctxutil.RequestData{UserID: s.cfg.DevUser, Plan: s.cfg.DevPlan})
	}
	if s.verifier == nil {
		return nil, fmt.Errorf("session verifier not configured")
	}
	token, ok := clerk.BearerToken(authorization)
	if !ok {
		return nil, clerk.ErrMissingToken
	}
	sess, err := s.verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	plan := usage.PlanFree
	if sess.HasPlan(s.cfg.PremiumPlan) {
		plan = usage.PlanPremium
	}
	return s.withUsage(ctx, &ctxutil.RequestData{
		UserID:    sess.UserID,
		SessionID: sess.SessionID,
		Plan:      plan,
	})
}

func (s *identityService) withUsage(ctx context.Context, rd *ctxutil.RequestData) (*ctxutil.RequestData, error) {
	snap, err := s.store.Load(ctx, rd.UserID)
	if err != nil {
		s.log.Warn("usage load failed", "user_id", rd.UserID, "store", s.store.Name(), "error", err)
		return nil, fmt.Errorf("load usage: %w", err)
	}
	rd.Usage = snap
	return rd, nil
}
