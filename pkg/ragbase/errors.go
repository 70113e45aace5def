package ragbase

import (
	"context"
	"fmt"
	"log/slog"
)

// Error is a context-aware error that carries metadata for logging.
//
// It implements the standard error interface and supports Go's error
// wrapping (errors.Is, errors.As, errors.Unwrap). Metadata includes the
// trace ID, request ID, session ID, and arbitrary slog attributes.
//
// Example:
//
//	err := ragbase.WrapErr(ctx, cause, "vector search failed")
//	err.Tag(slog.String("backend", "pgvector"))
//	return err
type Error struct {
	msg       string
	cause     error
	traceID   string
	requestID string
	sessionID string
	attrs     []slog.Attr
}

// WrapErr wraps an existing error with context metadata.
//
// Trace, request, and session IDs are extracted from context. Use Tag()
// to add additional metadata.
func WrapErr(ctx context.Context, err error, msg string) *Error {
	return &Error{
		msg:       msg,
		cause:     err,
		traceID:   TraceID(ctx),
		requestID: RequestID(ctx),
		sessionID: SessionID(ctx),
		attrs:     make([]slog.Attr, 0),
	}
}

// NewErr creates a new error with context metadata (no underlying cause).
func NewErr(ctx context.Context, msg string) *Error {
	return &Error{
		msg:       msg,
		cause:     nil,
		traceID:   TraceID(ctx),
		requestID: RequestID(ctx),
		sessionID: SessionID(ctx),
		attrs:     make([]slog.Attr, 0),
	}
}

// Tag adds a slog.Attr to the error for structured logging.
//
// Returns the error for fluent chaining.
func (e *Error) Tag(attr slog.Attr) *Error {
	e.attrs = append(e.attrs, attr)
	return e
}

// Tags adds multiple slog.Attr to the error.
func (e *Error) Tags(attrs ...slog.Attr) *Error {
	e.attrs = append(e.attrs, attrs...)
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// Message returns the error message without the cause.
func (e *Error) Message() string {
	return e.msg
}

// Cause returns the underlying error (alias for Unwrap).
func (e *Error) Cause() error {
	return e.cause
}

// LogAttrs returns all attributes including the context IDs.
func (e *Error) LogAttrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.cause != nil {
		attrs = append(attrs, slog.Any("error", e.cause))
	}
	if e.traceID != "" {
		attrs = append(attrs, slog.String("trace_id", e.traceID))
	}
	if e.requestID != "" {
		attrs = append(attrs, slog.String("request_id", e.requestID))
	}
	if e.sessionID != "" {
		attrs = append(attrs, slog.String("session_id", e.sessionID))
	}

	attrs = append(attrs, e.attrs...)
	return attrs
}

// Log logs this error at error level with all metadata.
func (e *Error) Log(ctx context.Context) {
	LogErrorAttr(ctx, e.msg, e.LogAttrs()...)
}

// Is implements errors.Is for this error.
//
// Returns true if target is the same type and has the same message.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.msg == t.msg
	}
	return false
}
