package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return FromZap(zap.New(core)), logs
}

func TestWithFieldsAttachesContext(t *testing.T) {
	logger, logs := newObserved(zapcore.DebugLevel)

	component := logger.WithFields(Fields{"component": "pitch_tracker"})
	component.Debug("tracking", Fields{"frames": 12})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "tracking", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "pitch_tracker", ctx["component"])
	assert.EqualValues(t, 12, ctx["frames"])
}

func TestErrorIncludesCause(t *testing.T) {
	logger, logs := newObserved(zapcore.InfoLevel)

	logger.Error(errors.New("boom"), "decode failed", Fields{"path": "a.wav"})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "boom", entry.ContextMap()["error"])
	assert.Equal(t, "a.wav", entry.ContextMap()["path"])
}

func TestLevelFiltering(t *testing.T) {
	logger, logs := newObserved(zapcore.WarnLevel)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "shown", logs.All()[0].Message)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewLoggerRejectsUnknownFormat(t *testing.T) {
	_, err := NewLogger(Config{Level: "info", Format: "xml"})
	assert.Error(t, err)

	l, err := NewLogger(Config{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestSetDefault(t *testing.T) {
	previous := NewDefaultLogger()
	t.Cleanup(func() { SetDefault(previous) })

	logger, logs := newObserved(zapcore.DebugLevel)
	SetDefault(logger)

	WithFields(Fields{"component": "engine"}).Info("ready")
	Error(errors.New("x"), "failed")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "engine", logs.All()[0].ContextMap()["component"])
}
