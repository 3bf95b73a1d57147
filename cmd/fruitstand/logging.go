package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type logFormat string

const (
	formatText logFormat = "text"
	formatJSON logFormat = "json"
)

// parseLevel returns info for anything it does not recognize.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseFormat(s string) logFormat {
	if strings.EqualFold(s, string(formatJSON)) {
		return formatJSON
	}
	return formatText
}

func newLogger(c Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     parseLevel(c.LogLevel),
		AddSource: c.Development(),
	}
	var handler slog.Handler
	switch parseFormat(c.LogFormat) {
	case formatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("environment", c.Environment)
}
