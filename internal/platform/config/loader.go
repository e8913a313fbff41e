package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var defaults = map[string]any{
	"env": "local",

	"server.port":                 8080,
	"server.read_timeout":         "30s",
	"server.write_timeout":        "120s",
	"server.shutdown_timeout":     "15s",
	"server.max_multipart_memory": int64(32 << 20),

	"log.mode":  "development",
	"log.level": "",

	"postgres.url":               "",
	"postgres.host":              "localhost",
	"postgres.port":              5432,
	"postgres.name":              "creatorai",
	"postgres.user":              "postgres",
	"postgres.password":          "",
	"postgres.sslmode":           "disable",
	"postgres.max_open_conns":    20,
	"postgres.max_idle_conns":    5,
	"postgres.conn_max_lifetime": "30m",
	"postgres.slow_query":        "500ms",
	"postgres.auto_migrate":      true,

	"redis.addr":       "",
	"redis.password":   "",
	"redis.db":         0,
	"redis.key_prefix": "creatorai",

	"usage.store": UsageStoreMetadata,

	"auth.disabled": false,
	"auth.dev_user": "user_local_dev",
	"auth.dev_plan": "free",

	"clerk.secret_key":         "",
	"clerk.api_url":            "https://api.clerk.com/v1",
	"clerk.jwks_url":           "",
	"clerk.issuer":             "",
	"clerk.authorized_parties": []string{},
	"clerk.premium_plan":       "premium",
	"clerk.timeout":            "10s",
	"clerk.clock_skew":         "5s",

	"llm.api_key":     "",
	"llm.base_url":    "https://generativelanguage.googleapis.com/v1beta/openai",
	"llm.model":       "gemini-2.0-flash",
	"llm.temperature": 0.7,
	"llm.timeout":     "120s",
	"llm.max_retries": 0,

	"clipdrop.api_key":     "",
	"clipdrop.url":         "https://clipdrop-api.co/text-to-image/v1",
	"clipdrop.timeout":     "120s",
	"clipdrop.max_retries": 0,

	"cloudinary.cloud_name":    "",
	"cloudinary.api_key":       "",
	"cloudinary.api_secret":    "",
	"cloudinary.upload_prefix": "https://api.cloudinary.com",
	"cloudinary.timeout":       "120s",

	"docextract.provider":         DocExtractPDF,
	"docextract.project_id":       "",
	"docextract.location":         "us",
	"docextract.processor_id":     "",
	"docextract.credentials_file": "",

	"features.article.free_limit":        10,
	"features.blog_title.free_limit":     10,
	"features.image_generate.free_limit": 20,
	"features.remove_bg.free_limit":      20,
	"features.remove_object.free_limit":  20,
	"features.resume_review.free_limit":  10,
	"features.article_default_tokens":    800,
	"features.blog_title_max_tokens":     100,
	"features.resume_max_tokens":         1000,
	"features.resume_max_bytes":          int64(5 << 20),

	"otel.enabled":      false,
	"otel.service_name": "creatorai-backend",
	"otel.exporter":     "otlp",
	"otel.endpoint":     "",
	"otel.insecure":     false,
	"otel.sample_ratio": 1.0,

	"metrics.enabled": true,
	"metrics.addr":    "",

	"cors.allow_origins": []string{"http://localhost:5173", "http://localhost:3000"},
}

// Env names that predate the dotted-key scheme.
var envAliases = map[string][]string{
	"llm.api_key":  {"LLM_API_KEY", "GEMINI_API_KEY"},
	"postgres.url": {"POSTGRES_URL", "DATABASE_URL"},
	"redis.addr":   {"REDIS_ADDR", "REDIS_URL"},
	"usage.store":  {"USAGE_STORE"},
	"log.mode":     {"LOG_MODE"},
	"log.level":    {"LOG_LEVEL"},
	"server.port":  {"SERVER_PORT", "PORT"},
}

// Load reads config.yaml (./configs, then .), a .env file if present, and environment
// overrides, in increasing precedence. Extra search paths are tried first.
func Load(searchPaths ...string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	normalize(&cfg)
	return &cfg, nil
}

func normalize(cfg *Config) {
	cfg.Usage.Store = strings.ToLower(strings.TrimSpace(cfg.Usage.Store))
	cfg.DocExtract.Provider = strings.ToLower(strings.TrimSpace(cfg.DocExtract.Provider))
	cfg.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.LLM.BaseURL), "/")
	cfg.Clerk.APIURL = strings.TrimRight(strings.TrimSpace(cfg.Clerk.APIURL), "/")
	cfg.Cloudinary.UploadPrefix = strings.TrimRight(strings.TrimSpace(cfg.Cloudinary.UploadPrefix), "/")
	var parties []string
	for _, p := range cfg.Clerk.AuthorizedParties {
		for _, part := range strings.Split(p, ",") {
			if part = strings.TrimSpace(part); part != "" {
				parties = append(parties, part)
			}
		}
	}
	cfg.Clerk.AuthorizedParties = parties
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
