package usage

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Plan is the caller's billing tier, resolved fresh on every request.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

func (p Plan) IsPremium() bool { return p == PlanPremium }

// Feature identifies one metered operation. The string value is the snapshot field name.
type Feature string

const (
	FeatureArticle       Feature = "article"
	FeatureBlogTitle     Feature = "blogTitle"
	FeatureImageGenerate Feature = "imageGenerate"
	FeatureRemoveBg      Feature = "removeBg"
	FeatureRemoveObject  Feature = "removeObject"
	FeatureResumeReview  Feature = "resumeReview"
)

// Features lists every metered feature in a stable order.
var Features = []Feature{
	FeatureArticle,
	FeatureBlogTitle,
	FeatureImageGenerate,
	FeatureRemoveBg,
	FeatureRemoveObject,
	FeatureResumeReview,
}

var metadataKeys = map[Feature]string{
	FeatureArticle:       "free_usage_article",
	FeatureBlogTitle:     "free_usage_blog_title",
	FeatureImageGenerate: "free_usage_image_generate",
	FeatureRemoveBg:      "free_usage_remove_bg",
	FeatureRemoveObject:  "free_usage_remove_object",
	FeatureResumeReview:  "free_usage_resume_review",
}

// MetadataKey is the identity provider private-metadata key holding the feature's counter.
func (f Feature) MetadataKey() string { return metadataKeys[f] }

// Snapshot holds the free-tier counters read once at the start of a request.
type Snapshot struct {
	Article       int `json:"article"`
	BlogTitle     int `json:"blogTitle"`
	ImageGenerate int `json:"imageGenerate"`
	RemoveBg      int `json:"removeBg"`
	RemoveObject  int `json:"removeObject"`
	ResumeReview  int `json:"resumeReview"`
}

func (s Snapshot) Get(f Feature) int {
	switch f {
	case FeatureArticle:
		return s.Article
	case FeatureBlogTitle:
		return s.BlogTitle
	case FeatureImageGenerate:
		return s.ImageGenerate
	case FeatureRemoveBg:
		return s.RemoveBg
	case FeatureRemoveObject:
		return s.RemoveObject
	case FeatureResumeReview:
		return s.ResumeReview
	default:
		return 0
	}
}

// With returns a copy of s with the feature's counter set to n.
func (s Snapshot) With(f Feature, n int) Snapshot {
	switch f {
	case FeatureArticle:
		s.Article = n
	case FeatureBlogTitle:
		s.BlogTitle = n
	case FeatureImageGenerate:
		s.ImageGenerate = n
	case FeatureRemoveBg:
		s.RemoveBg = n
	case FeatureRemoveObject:
		s.RemoveObject = n
	case FeatureResumeReview:
		s.ResumeReview = n
	}
	return s
}

// SnapshotFromMetadata projects the six known counters out of private metadata.
// Missing, negative or non-numeric values count as zero.
func SnapshotFromMetadata(md map[string]any) Snapshot {
	var s Snapshot
	for _, f := range Features {
		s = s.With(f, counterValue(md[f.MetadataKey()]))
	}
	return s
}

func counterValue(v any) int {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		n = f
	default:
		return 0
	}
	if math.IsNaN(n) || n <= 0 {
		return 0
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}
