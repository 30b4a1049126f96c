// Package logging provides the leveled logger every other package in
// this server logs through, the same INFO/WARN/ERROR/DEBUG shape the
// teacher's internal/common.Logger exposed, backed by zap instead of a
// bare stdlib *log.Logger.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a *zap.Logger behind the four level methods callers use.
type Logger struct {
	z *zap.Logger
}

// New builds a Logger writing ISO8601-timestamped console lines to
// stderr.
func New() *Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.AddSync(os.Stderr),
		zapcore.DebugLevel,
	)
	return &Logger{z: zap.New(core)}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }

// With returns a Logger that always includes the given fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{z: l.z.With(fields...)}
}

// Sync flushes any buffered log entries. cmd/server's main defers this
// call, so after a clean return from ListenAndServe it runs once every
// handler and the reaper have quiesced.
func (l *Logger) Sync() error { return l.z.Sync() }
