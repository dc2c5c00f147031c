package logging

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap so the rest of the program never imports it directly.
type Logger struct {
	zl *zap.Logger
}

type Config struct {
	Level  string // "debug", "info", "warn" or "error"
	Format string // "console" or "json"
}

// Field is re-exported so call sites can build structured fields
// without importing zap.
type Field = zap.Field

func String(key, value string) Field    { return zap.String(key, value) }
func Int(key string, value int) Field   { return zap.Int(key, value) }
func Bool(key string, value bool) Field { return zap.Bool(key, value) }
func Error(err error) Field             { return zap.Error(err) }

func Duration(key string, value time.Duration) Field {
	return zap.Duration(key, value)
}

func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = level
	zapCfg.Encoding = cfg.Format
	if cfg.Format == "console" {
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	zl, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	return &Logger{zl: zl}, nil
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *Logger {
	return &Logger{zl: zap.NewNop()}
}

func (l *Logger) Named(name string) *Logger {
	return &Logger{zl: l.zl.Named(name)}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.zl.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.zl.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.zl.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.zl.Error(msg, fields...) }

func (l *Logger) Sync() error {
	return l.zl.Sync()
}
