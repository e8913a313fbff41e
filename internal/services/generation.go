package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/yungbote/creatorai-backend/internal/domain/usage"
	"github.com/yungbote/creatorai-backend/internal/platform/apierr"
	"github.com/yungbote/creatorai-backend/internal/platform/clipdrop"
	"github.com/yungbote/creatorai-backend/internal/platform/cloudinary"
	"github.com/yungbote/creatorai-backend/internal/platform/ctxutil"
	"github.com/yungbote/creatorai-backend/internal/platform/docextract"
	"github.com/yungbote/creatorai-backend/internal/platform/logger"
	"github.com/yungbote/creatorai-backend/internal/platform/openai"
)

const (
	promptRemoveBackground = "Remove background from image"
	promptResumeReview     = "Review the uploaded resume"

	resumeReviewTemplate = "Review the following resume and provide constructive feedback on its strengths, weaknesses, and areas for improvement. Resume Content:\n\n%s"
)

// Upload is a file received from the client. Open may be called more than once.
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

type GenerationService interface {
	GenerateArticle(ctx context.Context, caller *ctxutil.RequestData, prompt string, length int) (string, error)
	GenerateBlogTitle(ctx context.Context, caller *ctxutil.RequestData, prompt string) (string, error)
	GenerateImage(ctx context.Context, caller *ctxutil.RequestData, prompt string, publish bool) (string, error)
	RemoveBackground(ctx context.Context, caller *ctxutil.RequestData, image *Upload) (string, error)
	RemoveObject(ctx context.Context, caller *ctxutil.RequestData, image *Upload, object string) (string, error)
	ReviewResume(ctx context.Context, caller *ctxutil.RequestData, resume *Upload) (string, error)
}

type GenerationConfig struct {
	ArticleDefaultTokens int
	BlogTitleMaxTokens   int
	ResumeMaxTokens      int
	ResumeMaxBytes       int64
}

type generationService struct {
	log       *logger.Logger
	pipeline  CreationPipeline
	llm       openai.Client
	images    clipdrop.Client
	media     cloudinary.Client
	extractor docextract.Extractor
	cfg       GenerationConfig
}

func NewGenerationService(
	log *logger.Logger,
	pipeline CreationPipeline,
	llm openai.Client,
	images clipdrop.Client,
	media cloudinary.Client,
	extractor docextract.Extractor,
	cfg GenerationConfig,
) GenerationService {
	if cfg.ArticleDefaultTokens <= 0 {
		cfg.ArticleDefaultTokens = 800
	}
	if cfg.BlogTitleMaxTokens <= 0 {
		cfg.BlogTitleMaxTokens = 100
	}
	if cfg.ResumeMaxTokens <= 0 {
		cfg.ResumeMaxTokens = 1000
	}
	if cfg.ResumeMaxBytes <= 0 {
		cfg.ResumeMaxBytes = 5 << 20
	}
	return &generationService{
		log:       log.With("service", "GenerationService"),
		pipeline:  pipeline,
		llm:       llm,
		images:    images,
		media:     media,
		extractor: extractor,
		cfg:       cfg,
	}
}

func (s *generationService) GenerateArticle(ctx context.Context, caller *ctxutil.RequestData, prompt string, length int) (string, error) {
	if length <= 0 {
		length = s.cfg.ArticleDefaultTokens
	}
	return s.pipeline.Run(ctx, caller, usage.FeatureArticle, FeatureRequest{
		Call: func(ctx context.Context) (Outcome, error) {
			text, err := s.llm.Complete(ctx, prompt, length)
			if err != nil {
				return Outcome{}, err
			}
			return Outcome{Prompt: prompt, Content: text}, nil
		},
	})
}

func (s *generationService) GenerateBlogTitle(ctx context.Context, caller *ctxutil.RequestData, prompt string) (string, error) {
	return s.pipeline.Run(ctx, caller, usage.FeatureBlogTitle, FeatureRequest{
		Call: func(ctx context.Context) (Outcome, error) {
			text, err := s.llm.Complete(ctx, prompt, s.cfg.BlogTitleMaxTokens)
			if err != nil {
				return Outcome{}, err
			}
			return Outcome{Prompt: prompt, Content: text}, nil
		},
	})
}

func (s *generationService) GenerateImage(ctx context.Context, caller *ctxutil.RequestData, prompt string, publish bool) (string, error) {
	return s.pipeline.Run(ctx, caller, usage.FeatureImageGenerate, FeatureRequest{
		Call: func(ctx context.Context) (Outcome, error) {
			img, err := s.images.TextToImage(ctx, prompt)
			if err != nil {
				return Outcome{}, err
			}
			res, err := s.media.Upload(ctx, cloudinary.Upload{DataURI: cloudinary.DataURI(img.MimeType, img.Bytes)})
			if err != nil {
				return Outcome{}, err
			}
			return Outcome{Prompt: prompt, Content: res.SecureURL, Publish: publish}, nil
		},
	})
}

func (s *generationService) RemoveBackground(ctx context.Context, caller *ctxutil.RequestData, image *Upload) (string, error) {
	return s.pipeline.Run(ctx, caller, usage.FeatureRemoveBg, FeatureRequest{
		Validate: func() error { return requireUpload(image, "Image file is required.") },
		Call: func(ctx context.Context) (Outcome, error) {
			res, err := s.uploadFile(ctx, image, cloudinary.EffectBackgroundRemoval)
			if err != nil {
				return Outcome{}, err
			}
			return Outcome{Prompt: promptRemoveBackground, Content: res.SecureURL}, nil
		},
	})
}

func (s *generationService) RemoveObject(ctx context.Context, caller *ctxutil.RequestData, image *Upload, object string) (string, error) {
	object = strings.TrimSpace(object)
	return s.pipeline.Run(ctx, caller, usage.FeatureRemoveObject, FeatureRequest{
		Validate: func() error {
			if err := requireUpload(image, "Image file is required."); err != nil {
				return err
			}
			if object == "" {
				return apierr.Validation("Object to remove is required.")
			}
			return nil
		},
		Call: func(ctx context.Context) (Outcome, error) {
			res, err := s.uploadFile(ctx, image, "")
			if err != nil {
				return Outcome{}, err
			}
			return Outcome{
				Prompt:  fmt.Sprintf("Removed %s from image", object),
				Content: s.media.URL(res.PublicID, cloudinary.GenRemove(object)),
			}, nil
		},
	})
}

func (s *generationService) ReviewResume(ctx context.Context, caller *ctxutil.RequestData, resume *Upload) (string, error) {
	return s.pipeline.Run(ctx, caller, usage.FeatureResumeReview, FeatureRequest{
		Validate: func() error {
			if err := requireUpload(resume, "Resume file is required."); err != nil {
				return err
			}
			if resume.Size > s.cfg.ResumeMaxBytes {
				return apierr.Validation("Resume file size exceeds allowed size (5MB).")
			}
			return nil
		},
		Call: func(ctx context.Context) (Outcome, error) {
			data, err := readUpload(resume)
			if err != nil {
				return Outcome{}, err
			}
			text, err := s.extractor.ExtractText(ctx, data, resume.ContentType)
			if err != nil {
				return Outcome{}, err
			}
			review, err := s.llm.Complete(ctx, fmt.Sprintf(resumeReviewTemplate, text), s.cfg.ResumeMaxTokens)
			if err != nil {
				return Outcome{}, err
			}
			return Outcome{Prompt: promptResumeReview, Content: review}, nil
		},
	})
}

func (s *generationService) uploadFile(ctx context.Context, f *Upload, transformation string) (cloudinary.UploadResult, error) {
	rc, err := f.Open()
	if err != nil {
		return cloudinary.UploadResult{}, fmt.Errorf("open upload: %w", err)
	}
	defer rc.Close()
	return s.media.Upload(ctx, cloudinary.Upload{
		File:           rc,
		Filename:       f.Filename,
		Transformation: transformation,
	})
}

func requireUpload(f *Upload, msg string) error {
	if f == nil || f.Open == nil {
		return apierr.Validation(msg)
	}
	return nil
}

func readUpload(f *Upload) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
