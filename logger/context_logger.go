package logger

import (
	"context"
	"log/slog"
	"time"
)

// ContextKey is the type for context keys used in logging
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	UserIDKey    ContextKey = "user_id"
	OperationKey ContextKey = "operation"

	// Business context keys, OTel semantic-convention style.
	ArticleIDKey ContextKey = "crawler.article.id"
	SearchIDKey  ContextKey = "crawler.search.id"
	WebsiteKey   ContextKey = "crawler.website"
	TopicKey     ContextKey = "crawler.topic"
	StageKey     ContextKey = "crawler.processing.stage"
)

// GlobalContext is the global ContextLogger instance
var GlobalContext *ContextLogger

// ContextLogger wraps a slog.Logger to add context-aware logging
type ContextLogger struct {
	logger *slog.Logger
}

// NewContextLogger creates a new ContextLogger wrapping the provided logger
func NewContextLogger(logger *slog.Logger) *ContextLogger {
	return &ContextLogger{logger: logger}
}

// WithContext adds context values to log entries and returns a new logger
func (cl *ContextLogger) WithContext(ctx context.Context) *slog.Logger {
	args := make([]any, 0)

	if requestID := ctx.Value(RequestIDKey); requestID != nil {
		args = append(args, "request_id", requestID.(string))
	}

	if userID := ctx.Value(UserIDKey); userID != nil {
		args = append(args, "user_id", userID.(string))
	}

	if operation := ctx.Value(OperationKey); operation != nil {
		args = append(args, "operation", operation.(string))
	}

	if articleID := ctx.Value(ArticleIDKey); articleID != nil {
		args = append(args, string(ArticleIDKey), articleID.(string))
	}

	if searchID := ctx.Value(SearchIDKey); searchID != nil {
		args = append(args, string(SearchIDKey), searchID.(string))
	}

	if website := ctx.Value(WebsiteKey); website != nil {
		args = append(args, string(WebsiteKey), website.(string))
	}

	if topic := ctx.Value(TopicKey); topic != nil {
		args = append(args, string(TopicKey), topic.(string))
	}

	if stage := ctx.Value(StageKey); stage != nil {
		args = append(args, string(StageKey), stage.(string))
	}

	return cl.logger.With(args...)
}

// LogDuration logs an operation completion with duration in milliseconds
func (cl *ContextLogger) LogDuration(ctx context.Context, operation string, durationMs int64) {
	cl.WithContext(ctx).Info("operation completed",
		"operation", operation,
		"duration_ms", durationMs,
	)
}

// LogError logs an operation failure with error details
func (cl *ContextLogger) LogError(ctx context.Context, operation string, err error) {
	cl.WithContext(ctx).Error("operation failed",
		"operation", operation,
		"error", err,
	)
}

// WithArticleID adds article ID to context for observability
func WithArticleID(ctx context.Context, articleID string) context.Context {
	return context.WithValue(ctx, ArticleIDKey, articleID)
}

// WithSearchID adds search ID to context for observability
func WithSearchID(ctx context.Context, searchID string) context.Context {
	return context.WithValue(ctx, SearchIDKey, searchID)
}

// WithWebsite adds the crawled site hostname to context for observability
func WithWebsite(ctx context.Context, website string) context.Context {
	return context.WithValue(ctx, WebsiteKey, website)
}

// WithTopic adds the scheduled topic to context for observability
func WithTopic(ctx context.Context, topic string) context.Context {
	return context.WithValue(ctx, TopicKey, topic)
}

// WithStage adds a pipeline stage name to context for observability
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, StageKey, stage)
}

// LogDurationTime is a convenience function that takes time.Duration
func (cl *ContextLogger) LogDurationTime(ctx context.Context, operation string, duration time.Duration) {
	cl.LogDuration(ctx, operation, duration.Milliseconds())
}
