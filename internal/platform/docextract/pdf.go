package docextract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	pdf "github.com/ledongthuc/pdf"

	"github.com/yungbote/creatorai-backend/internal/observability"
)

type pdfExtractor struct {
	metrics *observability.Metrics
}

// NewPDF returns an in-process PDF text extractor.
func NewPDF(metrics *observability.Metrics) Extractor {
	return &pdfExtractor{metrics: metrics}
}

func (e *pdfExtractor) ExtractText(ctx context.Context, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	start := time.Now()
	text, err := extractPDF(data)
	status := "ok"
	if err != nil {
		status = "error"
	}
	e.metrics.ObserveExternalCall("pdf", "extract_text", status, time.Since(start))
	return text, err
}

func (e *pdfExtractor) Close() error { return nil }

func extractPDF(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("pdf reader: empty document")
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return normalizeText(string(b)), nil
}
