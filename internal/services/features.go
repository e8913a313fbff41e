package services

import (
	"github.com/yungbote/creatorai-backend/internal/domain/creation"
	"github.com/yungbote/creatorai-backend/internal/domain/usage"
	"github.com/yungbote/creatorai-backend/internal/platform/config"
)

// FeatureSpec is one row of the metering table.
type FeatureSpec struct {
	Feature   usage.Feature
	FreeLimit int
	// Label completes "Free <label> limit reached."
	Label string
	Type  creation.Type
}

type FeatureTable map[usage.Feature]FeatureSpec

// DefaultFeatureTable is the table with the stock free limits.
func DefaultFeatureTable() FeatureTable {
	return FeatureTable{
		usage.FeatureArticle:       {usage.FeatureArticle, 10, "article generation", creation.TypeArticle},
		usage.FeatureBlogTitle:     {usage.FeatureBlogTitle, 10, "blog title generation", creation.TypeBlogTitle},
		usage.FeatureImageGenerate: {usage.FeatureImageGenerate, 20, "image generation", creation.TypeImage},
		usage.FeatureRemoveBg:      {usage.FeatureRemoveBg, 20, "background removal", creation.TypeImage},
		usage.FeatureRemoveObject:  {usage.FeatureRemoveObject, 20, "object removal", creation.TypeImage},
		usage.FeatureResumeReview:  {usage.FeatureResumeReview, 10, "resume review", creation.TypeResumeReview},
	}
}

// FeatureTableFromConfig applies configured free limits over the defaults.
func FeatureTableFromConfig(cfg config.FeaturesConfig) FeatureTable {
	t := DefaultFeatureTable()
	limits := map[usage.Feature]config.FeatureConfig{
		usage.FeatureArticle:       cfg.Article,
		usage.FeatureBlogTitle:     cfg.BlogTitle,
		usage.FeatureImageGenerate: cfg.ImageGenerate,
		usage.FeatureRemoveBg:      cfg.RemoveBg,
		usage.FeatureRemoveObject:  cfg.RemoveObject,
		usage.FeatureResumeReview:  cfg.ResumeReview,
	}
	for f, fc := range limits {
		spec := t[f]
		spec.FreeLimit = fc.FreeLimit
		t[f] = spec
	}
	return t
}
