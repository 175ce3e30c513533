// Package logger provides structured logging using Go's slog package.
// It supports configurable format (JSON/text) and log levels.
//
// Secret material (passwords, derived keys, decrypted plaintext) must never be
// passed to any logging call in this codebase. Wallet addresses are public data
// and are safe to log.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// contextKey is a typed key for context values to avoid collisions.
type contextKey string

const operationIDKey contextKey = "operation_id"

// Init initializes the global logger. Format is "json" (default when empty)
// or "text"; levelStr is "DEBUG", "INFO" (default when empty), "WARN", or
// "ERROR". Values come from config.Config, which owns the environment.
func Init(format, levelStr string) error {
	if format == "" {
		format = "json"
	}
	if levelStr == "" {
		levelStr = "INFO"
	}

	var level slog.Level
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid LOG_LEVEL: %s (must be DEBUG, INFO, WARN, or ERROR)", levelStr)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		return fmt.Errorf("invalid LOG_FORMAT: %s (must be json or text)", format)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return nil
}

// WithOperationID adds an operation ID to the context.
func WithOperationID(ctx context.Context, operationID string) context.Context {
	return context.WithValue(ctx, operationIDKey, operationID)
}

// GetOperationID retrieves the operation ID from context.
// Returns empty string if not present.
func GetOperationID(ctx context.Context) string {
	if id, ok := ctx.Value(operationIDKey).(string); ok {
		return id
	}
	return ""
}

// FromContext returns a logger enriched with the operation ID from context.
// If no operation ID is present, returns the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	if operationID := GetOperationID(ctx); operationID != "" {
		return slog.Default().With("operation_id", operationID)
	}
	return slog.Default()
}

// Info logs at INFO level with context enrichment.
func Info(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Info(msg, args...)
}

// Error logs at ERROR level with context enrichment.
func Error(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Error(msg, args...)
}

// Warn logs at WARN level with context enrichment.
func Warn(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Warn(msg, args...)
}

// Debug logs at DEBUG level with context enrichment.
func Debug(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Debug(msg, args...)
}
