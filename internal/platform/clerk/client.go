package clerk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	clerksdk "github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/jwks"
	"github.com/clerk/clerk-sdk-go/v2/user"

	"github.com/yungbote/creatorai-backend/internal/observability"
	"github.com/yungbote/creatorai-backend/internal/platform/httpx"
	"github.com/yungbote/creatorai-backend/internal/platform/logger"
)

const provider = "clerk"

// User is the subset of the Backend API user object this service reads.
type User struct {
	ID              string
	PrivateMetadata map[string]any
	PublicMetadata  map[string]any
}

// Client talks to the Clerk Backend API.
type Client interface {
	GetUser(ctx context.Context, userID string) (*User, error)
	// UpdatePrivateMetadata merges md into the user's private metadata; other keys are kept.
	UpdatePrivateMetadata(ctx context.Context, userID string, md map[string]any) (*User, error)
	// JWKS returns the instance's raw JSON Web Key Set.
	JWKS(ctx context.Context) (json.RawMessage, error)
}

type ClientConfig struct {
	APIURL    string
	SecretKey string
	Timeout   time.Duration
}

type client struct {
	log     *logger.Logger
	metrics *observability.Metrics
	users   *user.Client
	keys    *jwks.Client
}

func NewClient(log *logger.Logger, metrics *observability.Metrics, cfg ClientConfig) (Client, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, fmt.Errorf("clerk: missing secret key")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	sdkCfg := &clerksdk.ClientConfig{}
	sdkCfg.Key = clerksdk.String(cfg.SecretKey)
	sdkCfg.HTTPClient = &http.Client{Timeout: timeout}
	if base := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/"); base != "" {
		sdkCfg.URL = clerksdk.String(base)
	}

	return &client{
		log:     log.With("client", "clerk"),
		metrics: metrics,
		users:   user.NewClient(sdkCfg),
		keys:    jwks.NewClient(sdkCfg),
	}, nil
}

func (c *client) GetUser(ctx context.Context, userID string) (*User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("clerk: empty user id")
	}
	var out *User
	err := c.observe("get_user", func() error {
		u, err := c.users.Get(ctx, userID)
		if err != nil {
			return err
		}
		out, err = fromSDKUser(u)
		return err
	})
	return out, err
}

func (c *client) UpdatePrivateMetadata(ctx context.Context, userID string, md map[string]any) (*User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("clerk: empty user id")
	}
	raw, err := json.Marshal(md)
	if err != nil {
		return nil, fmt.Errorf("clerk update_metadata: encode: %w", err)
	}
	patch := json.RawMessage(raw)

	var out *User
	err = c.observe("update_metadata", func() error {
		u, err := c.users.UpdateMetadata(ctx, userID, &user.UpdateMetadataParams{PrivateMetadata: &patch})
		if err != nil {
			return err
		}
		out, err = fromSDKUser(u)
		return err
	})
	return out, err
}

func (c *client) JWKS(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.observe("jwks", func() error {
		set, err := c.keys.Get(ctx, &jwks.GetParams{})
		if err != nil {
			return err
		}
		if set == nil || set.Response == nil || len(set.Response.RawJSON) == 0 {
			return errors.New("empty key set response")
		}
		out = set.Response.RawJSON
		return nil
	})
	return out, err
}

// observe records the call and maps SDK API errors onto httpx.StatusError.
func (c *client) observe(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	status := "ok"
	if err != nil {
		status = "error"
		var apiErr *clerksdk.APIErrorResponse
		if errors.As(err, &apiErr) {
			status = fmt.Sprintf("http_%d", apiErr.HTTPStatusCode)
			err = &httpx.StatusError{Provider: provider, StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Error()}
		} else {
			err = fmt.Errorf("clerk %s: %w", op, err)
		}
		c.log.Warn("clerk request failed", "op", op, "error", err)
	}
	c.metrics.ObserveExternalCall(provider, op, status, time.Since(start))
	return err
}

func fromSDKUser(u *clerksdk.User) (*User, error) {
	if u == nil {
		return nil, errors.New("empty user response")
	}
	out := &User{ID: u.ID}
	if err := decodeMetadata(u.PrivateMetadata, &out.PrivateMetadata); err != nil {
		return nil, fmt.Errorf("decode private_metadata: %w", err)
	}
	if err := decodeMetadata(u.PublicMetadata, &out.PublicMetadata); err != nil {
		return nil, fmt.Errorf("decode public_metadata: %w", err)
	}
	return out, nil
}

func decodeMetadata(raw json.RawMessage, dst *map[string]any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
