package docextract

import (
	"context"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/yungbote/creatorai-backend/internal/observability"
	"github.com/yungbote/creatorai-backend/internal/platform/logger"
)

type DocumentAIConfig struct {
	ProjectID       string
	Location        string
	ProcessorID     string
	CredentialsFile string
}

type documentAIExtractor struct {
	log     *logger.Logger
	metrics *observability.Metrics
	client  *documentai.DocumentProcessorClient
	name    string
}

// NewDocumentAI returns an extractor backed by a Google Document AI OCR processor.
func NewDocumentAI(ctx context.Context, log *logger.Logger, metrics *observability.Metrics, cfg DocumentAIConfig) (Extractor, error) {
	location := strings.TrimSpace(cfg.Location)
	if location == "" {
		location = "us"
	}
	if cfg.ProjectID == "" || cfg.ProcessorID == "" {
		return nil, fmt.Errorf("documentai: project id and processor id are required")
	}
	opts := []option.ClientOption{option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", location))}
	if creds := strings.TrimSpace(cfg.CredentialsFile); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	c, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}
	name := processorName(cfg.ProjectID, location, cfg.ProcessorID)
	log = log.With("client", "documentai")
	log.Info("Document AI initialized", "processor", name)
	return &documentAIExtractor{log: log, metrics: metrics, client: c, name: name}, nil
}

func (e *documentAIExtractor) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "application/pdf"
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	start := time.Now()
	resp, err := e.client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: e.name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{Content: data, MimeType: mimeType},
		},
	})
	if err != nil {
		e.metrics.ObserveExternalCall("documentai", "process_document", "error", time.Since(start))
		return "", fmt.Errorf("documentai ProcessDocument: %w", err)
	}
	e.metrics.ObserveExternalCall("documentai", "process_document", "ok", time.Since(start))
	if resp == nil || resp.GetDocument() == nil {
		return "", nil
	}
	return normalizeText(resp.GetDocument().GetText()), nil
}

func (e *documentAIExtractor) Close() error {
	if e == nil || e.client == nil {
		return nil
	}
	return e.client.Close()
}

func processorName(projectID, location, processorID string) string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", projectID, location, processorID)
}
