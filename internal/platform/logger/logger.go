package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yungbote/creatorai-backend/internal/platform/envutil"
)

type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// New builds a logger for the given mode ("development", "production", "test").
// Level defaults to debug in development and info in production.
func New(mode string) (*Logger, error) {
	return NewWithLevel(mode, "")
}

func NewWithLevel(mode, level string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "test", "nop":
		return NewNop(), nil
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	if lvl, ok := parseLevel(level); ok {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func parseLevel(raw string) (zapcore.Level, bool) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return zapcore.InfoLevel, false
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(raw)); err != nil {
		return zapcore.InfoLevel, false
	}
	return lvl, true
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Debugw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Infow(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Warnw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Fatalw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(sanitizeKVs(keysAndValues)...)}
}

const redacted = "[REDACTED]"

// secretKeyParts mark a log key whose value is dropped.
var secretKeyParts = []string{"token", "authorization", "secret", "password", "api_key", "apikey", "signature", "email"}

// scrubber hides credentials and pseudonymizes user ids in structured log pairs.
type scrubber struct {
	enabled bool
	salt    string
}

var (
	scrubOnce sync.Once
	scrub     scrubber
)

func activeScrubber() scrubber {
	scrubOnce.Do(func() {
		scrub = scrubber{
			enabled: envutil.Bool("LOG_REDACTION_ENABLED", true),
			salt:    envutil.String("LOG_HASH_SALT", ""),
		}
	})
	return scrub
}

func sanitizeKVs(kv []interface{}) []interface{} {
	s := activeScrubber()
	if len(kv) == 0 || !s.enabled {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		out[i+1] = s.value(fmt.Sprint(out[i]), out[i+1])
	}
	return out
}

func sanitizeValue(key string, val interface{}) interface{} {
	return activeScrubber().value(key, val)
}

func (s scrubber) value(key string, val interface{}) interface{} {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, part := range secretKeyParts {
		if strings.Contains(key, part) {
			return redacted
		}
	}
	if strings.Contains(key, "user_id") {
		return s.pseudonym(val)
	}
	if str, ok := val.(string); ok && isSessionToken(str) {
		return redacted
	}
	return val
}

func (s scrubber) pseudonym(val interface{}) string {
	if val == nil {
		return ""
	}
	raw := strings.TrimSpace(fmt.Sprint(val))
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:6])
}

// isSessionToken matches compact JWS strings with a JSON header.
func isSessionToken(v string) bool {
	if !strings.HasPrefix(v, "eyJ") {
		return false
	}
	header, rest, ok := strings.Cut(v, ".")
	if !ok || len(header) <= 10 {
		return false
	}
	payload, sig, ok := strings.Cut(rest, ".")
	return ok && len(payload) > 10 && sig != "" && !strings.Contains(sig, ".")
}
