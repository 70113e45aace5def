// Package ragbase provides the streaming pipeline core for the
// question-answering flows in this repository: handlers, flows, pipes,
// context metadata, and context-aware errors and logging.
package ragbase

import (
	"context"
	"log/slog"
)

type ctxKey string

const (
	loggerKey    ctxKey = "ragbase.logger"
	traceIDKey   ctxKey = "ragbase.trace_id"
	requestIDKey ctxKey = "ragbase.request_id"
	sessionIDKey ctxKey = "ragbase.session_id"
)

// WithLogger stores a slog.Logger in the context for downstream handlers.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// Logger returns the logger from context, or slog.Default() if none is set.
func Logger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithTraceID stores a trace ID in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceID returns the trace ID from context, or "" if none is set.
func TraceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID stores a request ID in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request ID from context, or "" if none is set.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithSessionID stores a conversation session ID in the context.
//
// The session ID identifies one conversation across turns. History-bound
// chains read it to key their message store.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// SessionID returns the session ID from context, or "" if none is set.
func SessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}
