// Package logging builds slog loggers for the server and the CLI.
package logging

import (
	"io"
	"log/slog"
)

// NewLogger creates a structured logger appropriate for the environment.
// Production uses JSON at Info, everything else human-readable text at Debug.
func NewLogger(env string, w io.Writer) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if env == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// NewCLILogger пишет только предупреждения и ошибки, пока не включен verbose,
// чтобы не смешивать логи с выводом команд. Формат выбирается как в NewLogger.
func NewCLILogger(env string, w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if env == "production" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
