// Package logger builds the process-wide slog logger. All components take a
// *slog.Logger and narrow it with With; only main constructs one.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Format selects the log output encoding.
type Format string

const (
	// FormatJSON emits one JSON object per line. The default for deployed
	// environments.
	FormatJSON Format = "json"
	// FormatText emits human-readable key=value lines for local runs.
	FormatText Format = "text"
)

// Options configures the logger.
type Options struct {
	// Level is the minimum level, parsed from strings like "debug", "info",
	// "warn", "error". Unknown values fall back to info.
	Level string

	// Format is the output encoding. Unknown values fall back to JSON.
	Format Format

	// Service is attached to every record as the "service" attribute.
	Service string
}

// New creates a slog logger writing to stdout.
func New(opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var handler slog.Handler
	switch opts.Format {
	case FormatText:
		handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	}

	log := slog.New(handler)
	if opts.Service != "" {
		log = log.With("service", opts.Service)
	}
	return log
}

// ParseLevel parses a level string, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

type ctxKey struct{}

// WithContext returns a new context with the logger attached.
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger from context, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
