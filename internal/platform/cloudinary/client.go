package cloudinary

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"

	"github.com/yungbote/creatorai-backend/internal/observability"
	"github.com/yungbote/creatorai-backend/internal/platform/logger"
)

const provider = "cloudinary"

// EffectBackgroundRemoval strips the image background at upload time.
const EffectBackgroundRemoval = "e_background_removal"

// GenRemove returns the generative object-removal effect for object.
func GenRemove(object string) string {
	return "e_gen_remove:" + url.PathEscape(strings.TrimSpace(object))
}

// Upload describes one image upload. Exactly one of DataURI or File must be set.
type Upload struct {
	DataURI        string
	File           io.Reader
	Filename       string
	Transformation string
}

type UploadResult struct {
	SecureURL string
	PublicID  string
	Format    string
	Bytes     int64
}

// Client uploads images and builds delivery URLs.
type Client interface {
	Upload(ctx context.Context, in Upload) (UploadResult, error)
	// URL is a pure function of its inputs.
	URL(publicID string, transformations ...string) string
}

type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	// UploadPrefix overrides the API host, e.g. https://api.cloudinary.com.
	UploadPrefix string
	Timeout      time.Duration
}

type client struct {
	log     *logger.Logger
	metrics *observability.Metrics
	sdk     *cld.Cloudinary
	timeout time.Duration
}

func NewClient(log *logger.Logger, metrics *observability.Metrics, cfg Config) (Client, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary: cloud name, api key and api secret are required")
	}
	conf, err := config.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: config: %w", err)
	}
	if prefix := strings.TrimRight(strings.TrimSpace(cfg.UploadPrefix), "/"); prefix != "" {
		conf.API.UploadPrefix = prefix
	}
	conf.URL.Secure = true
	conf.URL.Analytics = false

	sdk, err := cld.NewFromConfiguration(*conf)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: init sdk: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &client{
		log:     log.With("client", "cloudinary"),
		metrics: metrics,
		sdk:     sdk,
		timeout: timeout,
	}, nil
}

func (c *client) URL(publicID string, transformations ...string) string {
	var parts []string
	for _, t := range transformations {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	img, err := c.sdk.Image(publicID)
	if err != nil {
		c.log.Warn("cloudinary asset rejected", "public_id", publicID, "error", err)
		return ""
	}
	img.Transformation = strings.Join(parts, "/")
	u, err := img.String()
	if err != nil {
		c.log.Warn("cloudinary url build failed", "public_id", publicID, "error", err)
		return ""
	}
	return u
}

func (c *client) Upload(ctx context.Context, in Upload) (UploadResult, error) {
	if (in.DataURI == "") == (in.File == nil) {
		return UploadResult{}, fmt.Errorf("cloudinary: exactly one of data uri or file is required")
	}
	var file any = in.DataURI
	if in.File != nil {
		file = in.File
	}
	params := uploader.UploadParams{Transformation: in.Transformation}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	res, err := c.sdk.Upload.Upload(ctx, file, params)
	status := "ok"
	switch {
	case err != nil:
		err = fmt.Errorf("cloudinary upload: %w", err)
	case res == nil:
		err = fmt.Errorf("cloudinary upload: empty response")
	case res.Error.Message != "":
		err = fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	case res.SecureURL == "" || res.PublicID == "":
		err = fmt.Errorf("cloudinary: upload response missing secure_url or public_id")
	}
	if err != nil {
		status = "error"
		c.log.Warn("cloudinary upload failed", "filename", in.Filename, "error", err)
	}
	c.metrics.ObserveExternalCall(provider, "upload", status, time.Since(start))
	if err != nil {
		return UploadResult{}, err
	}
	return UploadResult{
		SecureURL: res.SecureURL,
		PublicID:  res.PublicID,
		Format:    res.Format,
		Bytes:     int64(res.Bytes),
	}, nil
}

// DataURI encodes raw image bytes for upload.
func DataURI(mime string, b []byte) string {
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b)
}
