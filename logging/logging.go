// Package logging wraps a zap logger behind the leveled printf helpers used
// throughout sites-sync.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger = newLogger()
	guard  sync.RWMutex
)

func newLogger() *zap.SugaredLogger {
	config := zap.NewDevelopmentConfig()
	config.Level = level
	config.DisableStacktrace = true
	config.DisableCaller = true
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")

	l, err := config.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}

	return l.Sugar()
}

// SetDebug enables or disables DEBUG output.
func SetDebug(enabled bool) {
	if enabled {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(zapcore.InfoLevel)
	}
}

// SetLogger replaces the underlying logger and returns the previous one. Mostly
// for tests that want to observe log output.
func SetLogger(l *zap.Logger) *zap.Logger {
	guard.Lock()
	defer guard.Unlock()

	previous := logger.Desugar()
	logger = l.Sugar()

	return previous
}

// Sync flushes any buffered log entries.
func Sync() {
	get().Sync()
}

func Debugf(tag string, format string, args ...any) {
	get().With("tag", tag).Debugf(format, args...)
}

func Infof(tag string, format string, args ...any) {
	get().With("tag", tag).Infof(format, args...)
}

func Warnf(tag string, format string, args ...any) {
	get().With("tag", tag).Warnf(format, args...)
}

func Errorf(tag string, format string, args ...any) {
	get().With("tag", tag).Errorf(format, args...)
}

func get() *zap.SugaredLogger {
	guard.RLock()
	defer guard.RUnlock()

	return logger
}
