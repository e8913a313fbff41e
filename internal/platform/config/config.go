package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the full process configuration.
type Config struct {
	Env        string           `mapstructure:"env"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Usage      UsageConfig      `mapstructure:"usage"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Clerk      ClerkConfig      `mapstructure:"clerk"`
	LLM        LLMConfig        `mapstructure:"llm"`
	ClipDrop   ClipDropConfig   `mapstructure:"clipdrop"`
	Cloudinary CloudinaryConfig `mapstructure:"cloudinary"`
	DocExtract DocExtractConfig `mapstructure:"docextract"`
	Features   FeaturesConfig   `mapstructure:"features"`
	Otel       OtelConfig       `mapstructure:"otel"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	CORS       CORSConfig       `mapstructure:"cors"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// MaxMultipartMemory caps in-memory form parsing; larger parts spill to disk.
	MaxMultipartMemory int64 `mapstructure:"max_multipart_memory"`
}

func (s ServerConfig) Addr() string { return fmt.Sprintf(":%d", s.Port) }

type LogConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

type PostgresConfig struct {
	// URL wins over the discrete fields when set.
	URL             string        `mapstructure:"url"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	SlowQuery       time.Duration `mapstructure:"slow_query"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

func (p PostgresConfig) DSN() string {
	if strings.TrimSpace(p.URL) != "" {
		return p.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Name, p.SSLMode)
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (r RedisConfig) Enabled() bool { return strings.TrimSpace(r.Addr) != "" }

const (
	UsageStoreMetadata = "metadata"
	UsageStoreRedis    = "redis"
)

type UsageConfig struct {
	// Store selects where free-tier counters live: "metadata" or "redis".
	Store string `mapstructure:"store"`
}

type AuthConfig struct {
	Disabled bool   `mapstructure:"disabled"`
	DevUser  string `mapstructure:"dev_user"`
	DevPlan  string `mapstructure:"dev_plan"`
}

type ClerkConfig struct {
	SecretKey         string        `mapstructure:"secret_key"`
	APIURL            string        `mapstructure:"api_url"`
	JWKSURL           string        `mapstructure:"jwks_url"`
	Issuer            string        `mapstructure:"issuer"`
	AuthorizedParties []string      `mapstructure:"authorized_parties"`
	PremiumPlan       string        `mapstructure:"premium_plan"`
	Timeout           time.Duration `mapstructure:"timeout"`
	ClockSkew         time.Duration `mapstructure:"clock_skew"`
}

type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
}

type ClipDropConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	URL        string        `mapstructure:"url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

type CloudinaryConfig struct {
	CloudName    string        `mapstructure:"cloud_name"`
	APIKey       string        `mapstructure:"api_key"`
	APISecret    string        `mapstructure:"api_secret"`
	UploadPrefix string        `mapstructure:"upload_prefix"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

const (
	DocExtractPDF        = "pdf"
	DocExtractDocumentAI = "documentai"
)

type DocExtractConfig struct {
	Provider    string `mapstructure:"provider"`
	ProjectID   string `mapstructure:"project_id"`
	Location    string `mapstructure:"location"`
	ProcessorID string `mapstructure:"processor_id"`

	// CredentialsFile is optional; application default credentials are used otherwise.
	CredentialsFile string `mapstructure:"credentials_file"`
}

type FeatureConfig struct {
	FreeLimit int `mapstructure:"free_limit"`
}

type FeaturesConfig struct {
	Article       FeatureConfig `mapstructure:"article"`
	BlogTitle     FeatureConfig `mapstructure:"blog_title"`
	ImageGenerate FeatureConfig `mapstructure:"image_generate"`
	RemoveBg      FeatureConfig `mapstructure:"remove_bg"`
	RemoveObject  FeatureConfig `mapstructure:"remove_object"`
	ResumeReview  FeatureConfig `mapstructure:"resume_review"`

	ArticleDefaultTokens int   `mapstructure:"article_default_tokens"`
	BlogTitleMaxTokens   int   `mapstructure:"blog_title_max_tokens"`
	ResumeMaxTokens      int   `mapstructure:"resume_max_tokens"`
	ResumeMaxBytes       int64 `mapstructure:"resume_max_bytes"`
}

type OtelConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Exporter    string  `mapstructure:"exporter"`
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Addr serves /metrics on a separate listener; empty mounts it on the main router.
	Addr string `mapstructure:"addr"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// IsLocal reports whether the process runs in a local development environment.
func (c *Config) IsLocal() bool {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "local", "dev", "development":
		return true
	default:
		return false
	}
}

// AuthBypass is true only when auth is disabled in a local environment.
func (c *Config) AuthBypass() bool {
	return c.Auth.Disabled && c.IsLocal()
}

// Validate checks the secrets every deployment needs.
func (c *Config) Validate() error {
	var missing []string
	if !c.AuthBypass() && strings.TrimSpace(c.Clerk.SecretKey) == "" {
		missing = append(missing, "clerk.secret_key")
	}
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		missing = append(missing, "llm.api_key")
	}
	if strings.TrimSpace(c.ClipDrop.APIKey) == "" {
		missing = append(missing, "clipdrop.api_key")
	}
	if c.Cloudinary.CloudName == "" || c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
		missing = append(missing, "cloudinary.cloud_name/api_key/api_secret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	switch c.Usage.Store {
	case UsageStoreMetadata:
	case UsageStoreRedis:
		if !c.Redis.Enabled() {
			return fmt.Errorf("usage.store=redis requires redis.addr")
		}
	default:
		return fmt.Errorf("unknown usage.store %q", c.Usage.Store)
	}

	switch c.DocExtract.Provider {
	case DocExtractPDF:
	case DocExtractDocumentAI:
		if c.DocExtract.ProjectID == "" || c.DocExtract.ProcessorID == "" {
			return fmt.Errorf("docextract.provider=documentai requires project_id and processor_id")
		}
	default:
		return fmt.Errorf("unknown docextract.provider %q", c.DocExtract.Provider)
	}

	for name, f := range map[string]FeatureConfig{
		"article":        c.Features.Article,
		"blog_title":     c.Features.BlogTitle,
		"image_generate": c.Features.ImageGenerate,
		"remove_bg":      c.Features.RemoveBg,
		"remove_object":  c.Features.RemoveObject,
		"resume_review":  c.Features.ResumeReview,
	} {
		if f.FreeLimit < 0 {
			return fmt.Errorf("features.%s.free_limit must be >= 0", name)
		}
	}
	return nil
}
