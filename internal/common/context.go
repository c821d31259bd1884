package common

import (
	"context"
	"log/slog"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID  contextKey = "request_id"
	ContextKeyTemplateID contextKey = "template_id"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithTemplateID adds the requested template ID to the context
func WithTemplateID(ctx context.Context, templateID string) context.Context {
	return context.WithValue(ctx, ContextKeyTemplateID, templateID)
}

// TemplateIDFromContext extracts the template ID from context
func TemplateIDFromContext(ctx context.Context) string {
	if templateID, ok := ctx.Value(ContextKeyTemplateID).(string); ok {
		return templateID
	}
	return ""
}

// LoggerFromContext returns logger annotated with whatever request-scoped ids ctx carries.
func LoggerFromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if id := RequestIDFromContext(ctx); id != "" {
		logger = logger.With("req_id", id)
	}
	if id := TemplateIDFromContext(ctx); id != "" {
		logger = logger.With("template_id", id)
	}
	return logger
}
