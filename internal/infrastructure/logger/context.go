package logger

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is a type for context keys used by the logger package
type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// UploadIDKey is the context key for the upload being ingested
	UploadIDKey contextKey = "upload_id"
	// PlatformIDKey is the context key for the detected platform
	PlatformIDKey contextKey = "platform_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, returns a no-op logger if not found
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID adds request ID to context and returns enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	enrichedLogger := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enrichedLogger), enrichedLogger
}

// WithUploadID adds the upload ID to context and returns enriched logger
func WithUploadID(ctx context.Context, logger *zap.Logger, uploadID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, UploadIDKey, uploadID)
	enrichedLogger := logger.With(zap.String("upload_id", uploadID))
	return WithContext(ctx, enrichedLogger), enrichedLogger
}

// WithPlatformID adds the platform ID to context and returns enriched logger
func WithPlatformID(ctx context.Context, logger *zap.Logger, platformID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, PlatformIDKey, platformID)
	enrichedLogger := logger.With(zap.String("platform_id", platformID))
	return WithContext(ctx, enrichedLogger), enrichedLogger
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetUploadID retrieves the upload ID from context
func GetUploadID(ctx context.Context) string {
	if uploadID, ok := ctx.Value(UploadIDKey).(string); ok {
		return uploadID
	}
	return ""
}

// GetPlatformID retrieves the platform ID from context
func GetPlatformID(ctx context.Context) string {
	if platformID, ok := ctx.Value(PlatformIDKey).(string); ok {
		return platformID
	}
	return ""
}

// ContextLogger is a wrapper that provides convenient logging with the
// request_id, upload_id and platform_id carried by the context injected
// into every log entry.
type ContextLogger struct {
	ctx    context.Context
	logger *zap.Logger
}

// L returns a ContextLogger from the given context.
// Usage: logger.L(ctx).Info("message", zap.String("key", "value"))
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{
		ctx:    ctx,
		logger: FromContext(ctx),
	}
}

// WithLogger returns a ContextLogger using the provided logger instead of
// extracting from context. Useful when you have a pre-configured logger.
func WithLogger(ctx context.Context, logger *zap.Logger) *ContextLogger {
	return &ContextLogger{
		ctx:    ctx,
		logger: logger,
	}
}

// enrichedLogger returns a logger enriched with context fields.
func (cl *ContextLogger) enrichedLogger() *zap.Logger {
	l := cl.logger
	if l == nil {
		l = zap.NewNop()
	}

	if requestID := GetRequestID(cl.ctx); requestID != "" {
		l = l.With(zap.String("request_id", requestID))
	}
	if uploadID := GetUploadID(cl.ctx); uploadID != "" {
		l = l.With(zap.String("upload_id", uploadID))
	}
	if platformID := GetPlatformID(cl.ctx); platformID != "" {
		l = l.With(zap.String("platform_id", platformID))
	}

	return l
}

// With creates a child ContextLogger with additional fields.
func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{
		ctx:    cl.ctx,
		logger: cl.logger.With(fields...),
	}
}

// Debug logs a debug level message with context fields.
func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) {
	cl.enrichedLogger().Debug(msg, fields...)
}

// Info logs an info level message with context fields.
func (cl *ContextLogger) Info(msg string, fields ...zap.Field) {
	cl.enrichedLogger().Info(msg, fields...)
}

// Warn logs a warning level message with context fields.
func (cl *ContextLogger) Warn(msg string, fields ...zap.Field) {
	cl.enrichedLogger().Warn(msg, fields...)
}

// Error logs an error level message with context fields.
func (cl *ContextLogger) Error(msg string, fields ...zap.Field) {
	cl.enrichedLogger().Error(msg, fields...)
}

// Fatal logs a fatal level message with context fields and then calls os.Exit(1).
func (cl *ContextLogger) Fatal(msg string, fields ...zap.Field) {
	cl.enrichedLogger().Fatal(msg, fields...)
}

// Zap returns the underlying zap.Logger enriched with context fields.
func (cl *ContextLogger) Zap() *zap.Logger {
	return cl.enrichedLogger()
}
