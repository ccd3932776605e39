package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger implements the ports.Logger interface using zerolog.
type ZeroLogger struct {
	logger zerolog.Logger
}

// Config holds the logger output settings.
type Config struct {
	Level string // "debug", "info", "warn", "error"; defaults to info
	// ConsoleFormat switches from JSON lines to a human-readable console
	// layout, useful while developing.
	ConsoleFormat bool
	// Out overrides the destination; defaults to os.Stderr.
	Out io.Writer
}

// ParseLevel converts a string level to a zerolog level, defaulting to Info.
func ParseLevel(levelStr string) zerolog.Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New creates a zerolog-backed logger.
func New(cfg Config) *ZeroLogger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if cfg.ConsoleFormat {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	zl := zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().Timestamp().Logger()
	return &ZeroLogger{logger: zl}
}

func (l *ZeroLogger) emit(ev *zerolog.Event, msg string, fields []map[string]interface{}) {
	if len(fields) > 0 && fields[0] != nil {
		ev = ev.Fields(fields[0])
	}
	ev.Msg(msg)
}

// Debug logs a message at Debug level.
func (l *ZeroLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Debug(), msg, fields)
}

// Info logs a message at Info level.
func (l *ZeroLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Info(), msg, fields)
}

// Warn logs a message at Warning level.
func (l *ZeroLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Warn(), msg, fields)
}

// Error logs an error message at Error level.
func (l *ZeroLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Error().Err(err), msg, fields)
}
