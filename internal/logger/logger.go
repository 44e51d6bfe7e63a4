// Package logger wraps zap with key/value helpers and redaction of
// personal data captured by questionnaires.
package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Modes accepted by New.
const (
	ModeDev  = "dev"
	ModeProd = "prod"
	ModeTest = "test"
)

const redacted = "[REDACTED]"

// Options configures a Logger.
type Options struct {
	Mode  string // dev, prod or test (discard)
	Level string // debug, info, warn, error; default info

	// Redact masks personal values (names, free-text answers, credentials)
	// and hashes identifiers.
	Redact   bool
	HashSalt string
}

type redactor struct {
	enabled bool
	salt    string
}

// Logger is a zap SugaredLogger with redacting key/value methods.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
	r             redactor
}

// New builds a Logger. Test mode returns a no-op logger.
func New(opts Options) (*Logger, error) {
	r := redactor{enabled: opts.Redact, salt: opts.HashSalt}

	var cfg zap.Config
	switch strings.ToLower(opts.Mode) {
	case ModeTest, "nop":
		return &Logger{SugaredLogger: zap.NewNop().Sugar(), r: r}, nil
	case ModeProd, "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}

	level := opts.Level
	if level == "" {
		level = "info"
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}

	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zl.Sugar(), r: r}, nil
}

// NewWithCore wraps an existing core. Tests pass an observer core.
func NewWithCore(core zapcore.Core, redact bool) *Logger {
	return &Logger{SugaredLogger: zap.New(core).Sugar(), r: redactor{enabled: redact}}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.SugaredLogger.Debugw(msg, l.r.kvs(keysAndValues)...)
}

func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.SugaredLogger.Infow(msg, l.r.kvs(keysAndValues)...)
}

func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.SugaredLogger.Warnw(msg, l.r.kvs(keysAndValues)...)
}

func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.SugaredLogger.Errorw(msg, l.r.kvs(keysAndValues)...)
}

// With returns a child logger carrying the given fields.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(l.r.kvs(keysAndValues)...), r: l.r}
}

func (r redactor) kvs(kv []any) []any {
	if len(kv) == 0 || !r.enabled {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := toString(kv[i])
		out = append(out, key, r.value(strings.ToLower(strings.TrimSpace(key)), kv[i+1]))
	}
	return out
}

func (r redactor) value(key string, val any) any {
	switch {
	case key == "":
		return val
	case isRedactKey(key):
		return redacted
	case isHashKey(key):
		return r.hash(val)
	}
	if m, ok := val.(map[string]any); ok {
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = r.value(strings.ToLower(k), v)
		}
		return out
	}
	return val
}

// isRedactKey matches keys that carry what a caregiver typed: names,
// free-text answers and credentials.
func isRedactKey(key string) bool {
	for _, s := range []string{"name", "text", "answer", "email", "token", "password", "secret", "dsn"} {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

func isHashKey(key string) bool {
	return strings.Contains(key, "user_id") || strings.Contains(key, "session_id")
}

func (r redactor) hash(val any) string {
	raw := toString(val)
	if raw == "" {
		return ""
	}
	h := sha256.New()
	if r.salt != "" {
		_, _ = h.Write([]byte(r.salt))
	}
	_, _ = h.Write([]byte(raw))
	return "hash:" + hex.EncodeToString(h.Sum(nil))[:12]
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
