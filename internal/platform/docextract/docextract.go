package docextract

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/creatorai-backend/internal/observability"
	"github.com/yungbote/creatorai-backend/internal/platform/config"
	"github.com/yungbote/creatorai-backend/internal/platform/logger"
)

// Extractor turns a document into plain text.
type Extractor interface {
	ExtractText(ctx context.Context, data []byte, mimeType string) (string, error)
	Close() error
}

// New returns the extractor selected by cfg.Provider.
func New(ctx context.Context, log *logger.Logger, metrics *observability.Metrics, cfg config.DocExtractConfig) (Extractor, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", config.DocExtractPDF:
		return NewPDF(metrics), nil
	case config.DocExtractDocumentAI:
		return NewDocumentAI(ctx, log, metrics, DocumentAIConfig{
			ProjectID:       cfg.ProjectID,
			Location:        cfg.Location,
			ProcessorID:     cfg.ProcessorID,
			CredentialsFile: cfg.CredentialsFile,
		})
	default:
		return nil, fmt.Errorf("docextract: unknown provider %q", cfg.Provider)
	}
}

// normalizeText trims each line, collapses inner whitespace and drops blank lines.
func normalizeText(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		ln = strings.Join(strings.Fields(ln), " ")
		if ln != "" {
			out = append(out, ln)
		}
	}
	return strings.Join(out, "\n")
}
