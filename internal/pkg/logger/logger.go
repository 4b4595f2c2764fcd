package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Zap adapts a zap.Logger to the ports.Logger shape.
type Zap struct {
	base *zap.Logger
}

// New builds a Zap logger. format is "console" or "json"; level is a zap level name.
func New(level, format string) (*Zap, error) {
	var cfg zap.Config
	if strings.EqualFold(format, "json") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true

	base, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &Zap{base: base}, nil
}

// Wrap adapts an existing zap.Logger.
func Wrap(base *zap.Logger) *Zap {
	return &Zap{base: base}
}

// NewNop returns a logger that discards everything.
func NewNop() *Zap {
	return &Zap{base: zap.NewNop()}
}

// Named returns a child logger scoped to a component.
func (l *Zap) Named(name string) *Zap {
	return &Zap{base: l.base.Named(name)}
}

// Zap exposes the underlying logger for libraries that want it directly.
func (l *Zap) Zap() *zap.Logger {
	return l.base
}

// Sync flushes buffered entries.
func (l *Zap) Sync() error {
	return l.base.Sync()
}

func (l *Zap) Debug(msg string, fields map[string]interface{}) {
	l.base.Debug(msg, toZap(fields)...)
}

func (l *Zap) Info(msg string, fields map[string]interface{}) {
	l.base.Info(msg, toZap(fields)...)
}

func (l *Zap) Warn(msg string, fields map[string]interface{}) {
	l.base.Warn(msg, toZap(fields)...)
}

func (l *Zap) Error(msg string, err error, fields map[string]interface{}) {
	l.base.Error(msg, append(toZap(fields), zap.Error(err))...)
}

// toZap converts a field map into zap fields in a stable key order.
func toZap(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}
