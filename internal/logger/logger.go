// Package logger wraps zap with a console encoder and a package-level
// sugared logger so every component logs in the same shape.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global *zap.SugaredLogger

	level = zap.NewAtomicLevelAt(zap.InfoLevel)
)

func init() {
	global = New(level)
}

// New creates a sugared logger with a plain console encoder.
func New(enab zapcore.LevelEnabler, options ...zap.Option) *zap.SugaredLogger {
	if enab == nil {
		enab = level
	}
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "ts",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	})
	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), enab)
	return zap.New(core, options...).Sugar()
}

// SetLevel adjusts the minimum level of the package logger. Unknown names
// leave the level unchanged.
func SetLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		level.SetLevel(zap.DebugLevel)
	case "info":
		level.SetLevel(zap.InfoLevel)
	case "warn", "warning":
		level.SetLevel(zap.WarnLevel)
	case "error":
		level.SetLevel(zap.ErrorLevel)
	}
}

func Debugf(template string, args ...interface{}) { global.Debugf(template, args...) }
func Infof(template string, args ...interface{})  { global.Infof(template, args...) }
func Warnf(template string, args ...interface{})  { global.Warnf(template, args...) }
func Errorf(template string, args ...interface{}) { global.Errorf(template, args...) }
func Fatalf(template string, args ...interface{}) { global.Fatalf(template, args...) }

// Sync flushes buffered log entries; call on shutdown.
func Sync() { _ = global.Sync() }
