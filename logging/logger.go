// Package logging builds the process-wide slog logger and the HTTP request
// logging middleware.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldBytes      = "bytes"
	FieldError      = "error"
)

// Component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentWalking = "walking"
	ComponentStorage = "storage"
)

// Config holds logger configuration
type Config struct {
	Level  slog.Level
	Format string // "text" or "json"
	Output io.Writer
}

// DefaultConfig returns sensible defaults for logging
func DefaultConfig() Config {
	return Config{
		Level:  slog.LevelInfo,
		Format: "text",
		Output: os.Stdout,
	}
}

// New creates a logger with the given configuration.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps debug, info, warn and error (any case) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// WithComponent tags every record of the returned logger with a component.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(FieldComponent, component)
}
