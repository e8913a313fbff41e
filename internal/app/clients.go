package app

import (
	"context"
	"fmt"

	"github.com/yungbote/creatorai-backend/internal/observability"
	"github.com/yungbote/creatorai-backend/internal/platform/clerk"
	"github.com/yungbote/creatorai-backend/internal/platform/clipdrop"
	"github.com/yungbote/creatorai-backend/internal/platform/cloudinary"
	"github.com/yungbote/creatorai-backend/internal/platform/config"
	"github.com/yungbote/creatorai-backend/internal/platform/docextract"
	"github.com/yungbote/creatorai-backend/internal/platform/logger"
	"github.com/yungbote/creatorai-backend/internal/platform/openai"
)

type Clients struct {
	Clerk      clerk.Client
	Verifier   *clerk.Verifier
	LLM        openai.Client
	ClipDrop   clipdrop.Client
	Cloudinary cloudinary.Client
	DocExtract docextract.Extractor
}

func wireClients(ctx context.Context, log *logger.Logger, cfg *config.Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Clerk
	if cfg.Clerk.SecretKey != "" {
		c, err := clerk.NewClient(log, metrics, clerk.ClientConfig{
			APIURL:    cfg.Clerk.APIURL,
			SecretKey: cfg.Clerk.SecretKey,
			Timeout:   cfg.Clerk.Timeout,
		})
		if err != nil {
			return out, fmt.Errorf("init clerk client: %w", err)
		}
		out.Clerk = c
	}
	if !cfg.AuthBypass() {
		v, err := clerk.NewVerifier(ctx, out.Clerk, clerk.VerifierConfig{
			JWKSURL:           cfg.Clerk.JWKSURL,
			Issuer:            cfg.Clerk.Issuer,
			AuthorizedParties: cfg.Clerk.AuthorizedParties,
			Leeway:            cfg.Clerk.ClockSkew,
		})
		if err != nil {
			return out, fmt.Errorf("init session verifier: %w", err)
		}
		out.Verifier = v
	}

	// Completion API
	llm, err := openai.NewClient(log, metrics, openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		MaxRetries:  cfg.LLM.MaxRetries,
	})
	if err != nil {
		out.Close(log)
		return Clients{}, fmt.Errorf("init completion client: %w", err)
	}
	out.LLM = llm

	// Images
	cd, err := clipdrop.NewClient(log, metrics, clipdrop.Config{
		APIKey:     cfg.ClipDrop.APIKey,
		URL:        cfg.ClipDrop.URL,
		Timeout:    cfg.ClipDrop.Timeout,
		MaxRetries: cfg.ClipDrop.MaxRetries,
	})
	if err != nil {
		out.Close(log)
		return Clients{}, fmt.Errorf("init clipdrop client: %w", err)
	}
	out.ClipDrop = cd

	cl, err := cloudinary.NewClient(log, metrics, cloudinary.Config{
		CloudName:    cfg.Cloudinary.CloudName,
		APIKey:       cfg.Cloudinary.APIKey,
		APISecret:    cfg.Cloudinary.APISecret,
		UploadPrefix: cfg.Cloudinary.UploadPrefix,
		Timeout:      cfg.Cloudinary.Timeout,
	})
	if err != nil {
		out.Close(log)
		return Clients{}, fmt.Errorf("init cloudinary client: %w", err)
	}
	out.Cloudinary = cl

	// Documents
	ex, err := docextract.New(ctx, log, metrics, cfg.DocExtract)
	if err != nil {
		out.Close(log)
		return Clients{}, fmt.Errorf("init document extractor: %w", err)
	}
	out.DocExtract = ex

	return out, nil
}

func (c Clients) Close(log *logger.Logger) {
	if c.DocExtract != nil {
		if err := c.DocExtract.Close(); err != nil {
			log.Warn("document extractor close failed", "error", err)
		}
	}
	if c.Verifier != nil {
		c.Verifier.Close()
	}
}
