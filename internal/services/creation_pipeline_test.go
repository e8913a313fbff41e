package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/creatorai-backend/internal/data/repos/creations"
	"github.com/yungbote/creatorai-backend/internal/data/repos/testutil"
	"github.com/yungbote/creatorai-backend/internal/domain/creation"
	"github.com/yungbote/creatorai-backend/internal/domain/usage"
	"github.com/yungbote/creatorai-backend/internal/platform/apierr"
	"github.com/yungbote/creatorai-backend/internal/platform/ctxutil"
	"github.com/yungbote/creatorai-backend/internal/platform/dbctx"
)

type pipelineFixture struct {
	db       *gorm.DB
	store    *MemoryUsageStore
	pipeline CreationPipeline
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	store := NewMemoryUsageStore()
	return &pipelineFixture{
		db:       db,
		store:    store,
		pipeline: NewCreationPipeline(log, nil, DefaultFeatureTable(), creations.NewCreationRepo(db, log), store),
	}
}

// caller mirrors what the auth middleware attaches: the snapshot read at request start.
func (f *pipelineFixture) caller(t *testing.T, userID string, plan usage.Plan) *ctxutil.RequestData {
	t.Helper()
	snap, err := f.store.Load(context.Background(), userID)
	require.NoError(t, err)
	return &ctxutil.RequestData{UserID: userID, Plan: plan, Usage: snap}
}

func okCall(calls *int, content string) FeatureRequest {
	return FeatureRequest{Call: func(context.Context) (Outcome, error) {
		*calls++
		return Outcome{Prompt: "p", Content: content}, nil
	}}
}

func TestPipelineFreeTierAllowsUpToLimit(t *testing.T) {
	f := newPipelineFixture(t)
	calls := 0
	for i := 1; i <= 10; i++ {
		content, err := f.pipeline.Run(context.Background(), f.caller(t, "user_a", usage.PlanFree), usage.FeatureArticle, okCall(&calls, "text"))
		require.NoError(t, err, "call %d", i)
		assert.Equal(t, "text", content)
	}

	_, err := f.pipeline.Run(context.Background(), f.caller(t, "user_a", usage.PlanFree), usage.FeatureArticle, okCall(&calls, "text"))
	require.Error(t, err)
	assert.Equal(t, apierr.KindQuotaExceeded, apierr.KindOf(err))
	assert.Equal(t, "Free article generation limit reached. Upgrade to continue.", apierr.Message(err))

	assert.Equal(t, 10, calls)
	assert.Len(t, testutil.Creations(t, f.db, "user_a"), 10)
	snap, _ := f.store.Load(context.Background(), "user_a")
	assert.Equal(t, 10, snap.Article)
}

func TestPipelineQuotaRejectionHasNoSideEffects(t *testing.T) {
	f := newPipelineFixture(t)
	f.store.Set("user_a", usage.FeatureArticle, 10)

	calls := 0
	validated := false
	req := okCall(&calls, "text")
	req.Validate = func() error { validated = true; return nil }

	_, err := f.pipeline.Run(context.Background(), f.caller(t, "user_a", usage.PlanFree), usage.FeatureArticle, req)
	require.Error(t, err)
	assert.Equal(t, apierr.KindQuotaExceeded, apierr.KindOf(err))
	assert.False(t, validated)
	assert.Zero(t, calls)
	assert.Empty(t, testutil.Creations(t, f.db, "user_a"))
	snap, _ := f.store.Load(context.Background(), "user_a")
	assert.Equal(t, 10, snap.Article)
}

func TestPipelinePremiumIsNeverRejected(t *testing.T) {
	f := newPipelineFixture(t)
	f.store.Set("user_p", usage.FeatureImageGenerate, 500)

	calls := 0
	for i := 0; i < 3; i++ {
		_, err := f.pipeline.Run(context.Background(), f.caller(t, "user_p", usage.PlanPremium), usage.FeatureImageGenerate, okCall(&calls, "https://img"))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
	assert.Len(t, testutil.Creations(t, f.db, "user_p"), 3)

	snap, _ := f.store.Load(context.Background(), "user_p")
	assert.Equal(t, 500, snap.ImageGenerate, "premium use is not counted")
}

func TestPipelineSuccessIncrementsExactlyOneCounter(t *testing.T) {
	f := newPipelineFixture(t)
	f.store.Set("user_a", usage.FeatureArticle, 3)
	f.store.Set("user_a", usage.FeatureBlogTitle, 2)
	f.store.Set("user_a", usage.FeatureResumeReview, 7)
	before, _ := f.store.Load(context.Background(), "user_a")

	calls := 0
	content, err := f.pipeline.Run(context.Background(), f.caller(t, "user_a", usage.PlanFree), usage.FeatureArticle, okCall(&calls, "An article"))
	require.NoError(t, err)
	assert.Equal(t, "An article", content)
	assert.Equal(t, 1, calls)

	after, _ := f.store.Load(context.Background(), "user_a")
	assert.Equal(t, before.With(usage.FeatureArticle, 4), after)

	rows := testutil.Creations(t, f.db, "user_a")
	require.Len(t, rows, 1)
	assert.Equal(t, creation.TypeArticle, rows[0].Type)
	assert.Equal(t, "An article", rows[0].Content)
	assert.False(t, rows[0].Publish)
}

func TestPipelinePersistsOutcomeFields(t *testing.T) {
	f := newPipelineFixture(t)
	req := FeatureRequest{Call: func(context.Context) (Outcome, error) {
		return Outcome{Prompt: "a red fox", Content: "https://img/fox.png", Publish: true}, nil
	}}

	_, err := f.pipeline.Run(context.Background(), f.caller(t, "user_a", usage.PlanFree), usage.FeatureImageGenerate, req)
	require.NoError(t, err)

	rows := testutil.Creations(t, f.db, "user_a")
	require.Len(t, rows, 1)
	assert.Equal(t, "a red fox", rows[0].Prompt)
	assert.Equal(t, "https://img/fox.png", rows[0].Content)
	assert.Equal(t, creation.TypeImage, rows[0].Type)
	assert.True(t, rows[0].Publish)
	assert.False(t, rows[0].CreatedAt.IsZero())
}

func TestPipelineValidationStopsBeforeCall(t *testing.T) {
	f := newPipelineFixture(t)
	calls := 0
	req := okCall(&calls, "x")
	req.Validate = func() error { return apierr.Validation("bad input") }

	_, err := f.pipeline.Run(context.Background(), f.caller(t, "user_a", usage.PlanFree), usage.FeatureResumeReview, req)
	require.Error(t, err)
	assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))
	assert.Equal(t, "bad input", apierr.Message(err))
	assert.Zero(t, calls)
	assert.Empty(t, testutil.Creations(t, f.db, "user_a"))
}

func TestPipelineExternalFailureLeavesNoTrace(t *testing.T) {
	f := newPipelineFixture(t)
	req := FeatureRequest{Call: func(context.Context) (Outcome, error) {
		return Outcome{}, errors.New("upstream 503")
	}}

	_, err := f.pipeline.Run(context.Background(), f.caller(t, "user_a", usage.PlanFree), usage.FeatureBlogTitle, req)
	require.Error(t, err)
	assert.Equal(t, apierr.KindExternal, apierr.KindOf(err))
	assert.Equal(t, "upstream 503", apierr.Message(err))
	assert.Empty(t, testutil.Creations(t, f.db, "user_a"))
	snap, _ := f.store.Load(context.Background(), "user_a")
	assert.Zero(t, snap.BlogTitle)
}

type failingStore struct{ *MemoryUsageStore }

func (failingStore) Increment(context.Context, string, usage.Feature, int) error {
	return errors.New("metadata write failed")
}

func TestPipelineKeepsRowWhenCounterWriteFails(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	store := failingStore{NewMemoryUsageStore()}
	p := NewCreationPipeline(log, nil, DefaultFeatureTable(), creations.NewCreationRepo(db, log), store)

	calls := 0
	_, err := p.Run(context.Background(), &ctxutil.RequestData{UserID: "user_a", Plan: usage.PlanFree}, usage.FeatureArticle, okCall(&calls, "text"))
	require.Error(t, err)
	assert.Equal(t, apierr.KindUnexpected, apierr.KindOf(err))
	assert.Len(t, testutil.Creations(t, db, "user_a"), 1)
}

type failingRepo struct{}

func (failingRepo) Create(dbctx.Context, *creation.Creation) (*creation.Creation, error) {
	return nil, errors.New("db down")
}

func TestPipelineInsertFailureSkipsCounter(t *testing.T) {
	store := NewMemoryUsageStore()
	p := NewCreationPipeline(testutil.Logger(t), nil, DefaultFeatureTable(), failingRepo{}, store)

	calls := 0
	_, err := p.Run(context.Background(), &ctxutil.RequestData{UserID: "user_a", Plan: usage.PlanFree}, usage.FeatureArticle, okCall(&calls, "text"))
	require.Error(t, err)
	assert.Equal(t, apierr.KindUnexpected, apierr.KindOf(err))
	snap, _ := store.Load(context.Background(), "user_a")
	assert.Zero(t, snap.Article)
}

func TestPipelineRequiresCaller(t *testing.T) {
	f := newPipelineFixture(t)
	calls := 0
	_, err := f.pipeline.Run(context.Background(), nil, usage.FeatureArticle, okCall(&calls, "x"))
	require.Error(t, err)
	assert.Zero(t, calls)
}

func TestPipelineConfiguredLimits(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	table := DefaultFeatureTable()
	spec := table[usage.FeatureBlogTitle]
	spec.FreeLimit = 1
	table[usage.FeatureBlogTitle] = spec
	store := NewMemoryUsageStore()
	p := NewCreationPipeline(log, nil, table, creations.NewCreationRepo(db, log), store)

	calls := 0
	_, err := p.Run(context.Background(), &ctxutil.RequestData{UserID: "user_a", Plan: usage.PlanFree}, usage.FeatureBlogTitle, okCall(&calls, "t"))
	require.NoError(t, err)

	snap, _ := store.Load(context.Background(), "user_a")
	_, err = p.Run(context.Background(), &ctxutil.RequestData{UserID: "user_a", Plan: usage.PlanFree, Usage: snap}, usage.FeatureBlogTitle, okCall(&calls, "t"))
	assert.Equal(t, apierr.KindQuotaExceeded, apierr.KindOf(err))
	assert.Equal(t, "Free blog title generation limit reached. Upgrade to continue.", apierr.Message(err))
}

func TestDefaultFeatureTableLimits(t *testing.T) {
	table := DefaultFeatureTable()
	want := map[usage.Feature]int{
		usage.FeatureArticle:       10,
		usage.FeatureBlogTitle:     10,
		usage.FeatureImageGenerate: 20,
		usage.FeatureRemoveBg:      20,
		usage.FeatureRemoveObject:  20,
		usage.FeatureResumeReview:  10,
	}
	for f, limit := range want {
		assert.Equal(t, limit, table[f].FreeLimit, string(f))
	}
}
