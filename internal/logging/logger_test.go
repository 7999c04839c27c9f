package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	previous := root()
	SetBase(zap.New(core))
	t.Cleanup(func() { SetBase(previous) })

	return logs
}

func TestLoggerV2_AddsServiceAndFields(t *testing.T) {
	logs := observe(t)

	NewLoggerV2("allocator").Info("Shipping tax allocated", Fields{"buckets": 2})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Shipping tax allocated", entry.Message)

	ctx := entry.ContextMap()
	assert.Equal(t, "allocator", ctx["service"])
	assert.EqualValues(t, 2, ctx["buckets"])
}

func TestLoggerV2_WithMergesFields(t *testing.T) {
	logs := observe(t)

	l := NewLoggerV2("handlers").With(Fields{"request_id": "req_1"})
	l.Warn("Slow request", Fields{"duration_ms": 1200})

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "req_1", ctx["request_id"])
	assert.EqualValues(t, 1200, ctx["duration_ms"])
}

func TestPackageLevelHelpers(t *testing.T) {
	logs := observe(t)

	Info("Database connected", Fields{"host": "localhost"})
	Infof("Starting on port %d", 8085)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "Starting on port 8085", logs.All()[1].Message)
}

func TestConfigure_UnknownLevelFallsBackToInfo(t *testing.T) {
	t.Cleanup(func() { Configure(defaultLogLevel) })

	Configure("debug")
	assert.Equal(t, zapcore.DebugLevel, level.Level())

	Configure("chatty")
	assert.Equal(t, zapcore.InfoLevel, level.Level())
}
