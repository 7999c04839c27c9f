package logging

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLogLevel = "info"

// Fields carries structured key/value pairs attached to a log entry.
type Fields map[string]interface{}

var (
	baseMu sync.RWMutex
	level  = zap.NewAtomicLevelAt(zap.InfoLevel)
	base   = mustBuild(level)
)

// Configure sets the process-wide log level ("debug", "info", "warn", "error").
// Unknown values fall back to info.
func Configure(levelName string) {
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(levelName)))); err != nil {
		_ = level.UnmarshalText([]byte(defaultLogLevel))
	}
}

// SetBase replaces the root zap logger. Tests use it with zaptest/observer cores.
func SetBase(l *zap.Logger) {
	baseMu.Lock()
	defer baseMu.Unlock()
	base = l
}

func root() *zap.Logger {
	baseMu.RLock()
	defer baseMu.RUnlock()
	return base
}

func mustBuild(lvl zap.AtomicLevel) *zap.Logger {
	encoderCfg := zapcore.EncoderConfig{
		MessageKey:    "message",
		TimeKey:       "timestamp",
		LevelKey:      "severity",
		NameKey:       "logger",
		CallerKey:     "caller",
		StacktraceKey: "stacktrace",
		EncodeTime:    zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}

	cfg := zap.Config{
		Level:             lvl,
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// LoggerV2 is a component-scoped structured logger.
type LoggerV2 struct {
	service string
	fields  Fields
}

// NewLoggerV2 returns a logger tagged with the given service/component name.
func NewLoggerV2(service string) *LoggerV2 {
	return &LoggerV2{service: service}
}

// With returns a child logger that adds fields to every entry.
func (l *LoggerV2) With(fields Fields) *LoggerV2 {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &LoggerV2{service: l.service, fields: merged}
}

func (l *LoggerV2) Debug(msg string, fields ...Fields) {
	l.zap().Debug(msg, l.toZap(fields)...)
}

func (l *LoggerV2) Info(msg string, fields ...Fields) {
	l.zap().Info(msg, l.toZap(fields)...)
}

func (l *LoggerV2) Warn(msg string, fields ...Fields) {
	l.zap().Warn(msg, l.toZap(fields)...)
}

func (l *LoggerV2) Error(msg string, fields ...Fields) {
	l.zap().Error(msg, l.toZap(fields)...)
}

// Fatal logs and exits the process.
func (l *LoggerV2) Fatal(msg string, fields ...Fields) {
	l.zap().Fatal(msg, l.toZap(fields)...)
}

func (l *LoggerV2) zap() *zap.Logger {
	if l == nil {
		return root()
	}
	return root().With(zap.String("service", l.service))
}

func (l *LoggerV2) toZap(extra []Fields) []zap.Field {
	var all Fields
	if l != nil && len(l.fields) > 0 {
		all = make(Fields, len(l.fields))
		for k, v := range l.fields {
			all[k] = v
		}
	}
	for _, f := range extra {
		if all == nil {
			all = make(Fields, len(f))
		}
		for k, v := range f {
			all[k] = v
		}
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, zap.Any(k, all[k]))
	}
	return out
}

// Info logs a message without a component scope.
func Info(msg string, fields ...Fields) {
	(*LoggerV2)(nil).Info(msg, fields...)
}

// Infof logs a printf-style message.
func Infof(format string, args ...interface{}) {
	root().Sugar().Infof(format, args...)
}

// Sync flushes buffered entries.
func Sync() error {
	return root().Sync()
}
