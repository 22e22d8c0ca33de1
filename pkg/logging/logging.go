package logging

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields is a set of structured key/value pairs attached to a log entry
type Fields map[string]any

// Logger is the structured logger used across the analysis packages
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)
	WithFields(fields Fields) Logger
}

// Config controls the level and encoding of loggers built by NewLogger
type Config struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level"`
	Format string `mapstructure:"format" json:"format" yaml:"format"` // "console" or "json"
}

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger
)

// NewLogger builds a zap-backed logger writing to stderr
func NewLogger(cfg Config) (Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "", "console", "text":
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)
	return FromZap(zap.New(core)), nil
}

// FromZap wraps an existing zap logger
func FromZap(l *zap.Logger) Logger {
	return &zapLogger{base: l}
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() Logger {
	return FromZap(zap.NewNop())
}

// NewDefaultLogger returns the process-wide default logger
func NewDefaultLogger() Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	if l != nil {
		return l
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger, _ = NewLogger(Config{Level: "info", Format: "console"})
	}
	return defaultLogger
}

// SetDefault replaces the process-wide default logger
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// WithFields returns the default logger with fields attached
func WithFields(fields Fields) Logger {
	return NewDefaultLogger().WithFields(fields)
}

// Debug logs on the default logger
func Debug(msg string, fields ...Fields) {
	NewDefaultLogger().Debug(msg, fields...)
}

// Info logs on the default logger
func Info(msg string, fields ...Fields) {
	NewDefaultLogger().Info(msg, fields...)
}

// Warn logs on the default logger
func Warn(msg string, fields ...Fields) {
	NewDefaultLogger().Warn(msg, fields...)
}

// Error logs an error on the default logger
func Error(err error, msg string, fields ...Fields) {
	NewDefaultLogger().Error(err, msg, fields...)
}

// ParseLevel maps a level name onto a zap level. Empty means info.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unsupported log level: %s", level)
	}
}

type zapLogger struct {
	base *zap.Logger
}

func (l *zapLogger) Debug(msg string, fields ...Fields) {
	l.base.Debug(msg, toZapFields(fields)...)
}

func (l *zapLogger) Info(msg string, fields ...Fields) {
	l.base.Info(msg, toZapFields(fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...Fields) {
	l.base.Warn(msg, toZapFields(fields)...)
}

func (l *zapLogger) Error(err error, msg string, fields ...Fields) {
	zf := toZapFields(fields)
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	l.base.Error(msg, zf...)
}

func (l *zapLogger) WithFields(fields Fields) Logger {
	return &zapLogger{base: l.base.With(toZapFields([]Fields{fields})...)}
}

// toZapFields flattens field maps in key order so entries are stable
func toZapFields(fields []Fields) []zap.Field {
	size := 0
	for _, f := range fields {
		size += len(f)
	}
	if size == 0 {
		return nil
	}

	out := make([]zap.Field, 0, size)
	for _, f := range fields {
		keys := make([]string, 0, len(f))
		for k := range f {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, zap.Any(k, f[k]))
		}
	}
	return out
}
