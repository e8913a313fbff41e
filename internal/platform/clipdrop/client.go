package clipdrop

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/creatorai-backend/internal/observability"
	"github.com/yungbote/creatorai-backend/internal/platform/httpx"
	"github.com/yungbote/creatorai-backend/internal/platform/logger"
)

const provider = "clipdrop"

// Image is a generated raster image.
type Image struct {
	Bytes    []byte
	MimeType string
}

// Client renders images from text prompts.
type Client interface {
	TextToImage(ctx context.Context, prompt string) (Image, error)
}

type Config struct {
	APIKey     string
	URL        string
	Timeout    time.Duration
	MaxRetries int
}

type client struct {
	log        *logger.Logger
	metrics    *observability.Metrics
	url        string
	apiKey     string
	maxRetries int
	httpClient *http.Client
}

func NewClient(log *logger.Logger, metrics *observability.Metrics, cfg Config) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("clipdrop: missing api key")
	}
	u := strings.TrimSpace(cfg.URL)
	if u == "" {
		u = "https://clipdrop-api.co/text-to-image/v1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &client{
		log:        log.With("client", "clipdrop"),
		metrics:    metrics,
		url:        u,
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (c *client) TextToImage(ctx context.Context, prompt string) (Image, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("prompt", prompt); err != nil {
		return Image{}, err
	}
	if err := mw.Close(); err != nil {
		return Image{}, err
	}
	payload := body.Bytes()
	contentType := mw.FormDataContentType()

	start := time.Now()
	var img Image
	err := httpx.Retry(ctx, c.maxRetries, func(ctx context.Context) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("Content-Type", contentType)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		raw, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return resp, readErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return resp, &httpx.StatusError{Provider: provider, StatusCode: resp.StatusCode, Body: string(raw)}
		}
		mime := resp.Header.Get("Content-Type")
		if mime == "" || strings.HasPrefix(mime, "application/octet-stream") {
			mime = http.DetectContentType(raw)
		}
		img = Image{Bytes: raw, MimeType: mime}
		return resp, nil
	}, func(attempt int, sleep time.Duration, err error) {
		c.log.Warn("text-to-image retrying", "attempt", attempt, "sleep", sleep.String(), "error", err.Error())
	})

	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.ObserveExternalCall(provider, "text_to_image", status, time.Since(start))
	if err != nil {
		return Image{}, err
	}
	if len(img.Bytes) == 0 {
		return Image{}, fmt.Errorf("clipdrop: empty image payload")
	}
	return img, nil
}
