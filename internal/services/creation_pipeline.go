package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/creatorai-backend/internal/data/repos/creations"
	"github.com/yungbote/creatorai-backend/internal/domain/creation"
	"github.com/yungbote/creatorai-backend/internal/domain/usage"
	"github.com/yungbote/creatorai-backend/internal/observability"
	"github.com/yungbote/creatorai-backend/internal/platform/apierr"
	"github.com/yungbote/creatorai-backend/internal/platform/ctxutil"
	"github.com/yungbote/creatorai-backend/internal/platform/dbctx"
	"github.com/yungbote/creatorai-backend/internal/platform/logger"
)

// Outcome is what a feature's external call chain produced.
type Outcome struct {
	Prompt  string
	Content string
	Publish bool
}

// FeatureRequest carries the per-feature steps of one pipeline run.
type FeatureRequest struct {
	// Validate runs after the quota check and before any external call. Optional.
	Validate func() error
	Call     func(ctx context.Context) (Outcome, error)
}

// CreationPipeline runs quota check, external call, persist and counter write-back
// for every metered feature.
type CreationPipeline interface {
	Run(ctx context.Context, caller *ctxutil.RequestData, feature usage.Feature, req FeatureRequest) (string, error)
}

type creationPipeline struct {
	log      *logger.Logger
	metrics  *observability.Metrics
	features FeatureTable
	repo     creations.CreationRepo
	store    UsageStore
}

func NewCreationPipeline(log *logger.Logger, metrics *observability.Metrics, features FeatureTable, repo creations.CreationRepo, store UsageStore) CreationPipeline {
	return &creationPipeline{
		log:      log.With("service", "CreationPipeline"),
		metrics:  metrics,
		features: features,
		repo:     repo,
		store:    store,
	}
}

func (p *creationPipeline) Run(ctx context.Context, caller *ctxutil.RequestData, feature usage.Feature, req FeatureRequest) (content string, err error) {
	plan := usage.PlanFree
	if caller != nil && caller.Plan != "" {
		plan = caller.Plan
	}
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = string(apierr.KindOf(err))
		}
		p.metrics.IncFeatureOutcome(string(feature), string(plan), outcome)
	}()

	if caller == nil || caller.UserID == "" {
		return "", apierr.Unexpected(errors.New("unauthenticated request"))
	}
	spec, ok := p.features[feature]
	if !ok {
		return "", apierr.Unexpected(fmt.Errorf("unknown feature %q", feature))
	}
	log := p.log.With("feature", string(feature), "user_id", caller.UserID, "plan", string(plan))

	current := caller.Usage.Get(feature)
	if !plan.IsPremium() && current >= spec.FreeLimit {
		log.Info("free limit reached", "count", current, "limit", spec.FreeLimit)
		return "", apierr.QuotaExceeded(spec.Label)
	}

	if req.Validate != nil {
		if err := req.Validate(); err != nil {
			return "", asKind(err, apierr.KindValidation)
		}
	}

	out, err := req.Call(ctx)
	if err != nil {
		log.Warn("external call failed", "error", err)
		var e *apierr.Error
		if errors.As(err, &e) {
			return "", err
		}
		return "", apierr.External(err)
	}

	row := &creation.Creation{
		UserID:  caller.UserID,
		Prompt:  out.Prompt,
		Content: out.Content,
		Type:    spec.Type,
		Publish: out.Publish,
	}
	if _, err := p.repo.Create(dbctx.Context{Ctx: ctx}, row); err != nil {
		return "", apierr.Unexpected(fmt.Errorf("save creation: %w", err))
	}

	if !plan.IsPremium() {
		if err := p.store.Increment(ctx, caller.UserID, feature, current); err != nil {
			p.metrics.IncUsageIncrement(string(feature), "error")
			// The creation row is kept; the counter is not retried.
			return "", apierr.Unexpected(err)
		}
		p.metrics.IncUsageIncrement(string(feature), "ok")
	}

	log.Debug("creation recorded", "creation_id", row.ID, "type", string(spec.Type))
	return out.Content, nil
}

// asKind keeps an existing classification and otherwise tags err with kind.
func asKind(err error, kind apierr.Kind) error {
	var e *apierr.Error
	if errors.As(err, &e) {
		return err
	}
	return apierr.New(kind, "", err)
}
