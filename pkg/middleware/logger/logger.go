// Package logger provides pluggable logging middleware for flows.
//
// A Logger wraps a backend Adapter (zerolog, standard log) and produces
// flow stages that observe data passing through a pipeline without
// altering it.
package logger

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// LogLevel represents logging levels (Debug < Info < Warn < Error)
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Attribute represents a structured logging attribute for key-value pairs
type Attribute struct {
	Key   string
	Value any
}

// Attr creates an Attribute
func Attr(key string, value any) Attribute {
	return Attribute{Key: key, Value: value}
}

// Adapter defines the contract for logging backends.
type Adapter interface {
	Log(ctx context.Context, level LogLevel, msg string, attrs ...Attribute)
	IsLevelEnabled(ctx context.Context, level LogLevel) bool
}

// Logger wraps an Adapter and provides the handler-building API.
type Logger struct {
	backend Adapter
}

// New creates a Logger with a custom backend.
//
// Example:
//
//	log := logger.New(logger.NewZerologAdapter(zl))
//	flow.Use(log.Info().Head("QUERY", 80))
func New(backend Adapter) *Logger {
	return &Logger{backend: backend}
}

// Default creates a Logger using the standard library log package.
func Default() *Logger {
	return New(NewStandardAdapter(log.Default()))
}

// Debug returns a builder that logs at debug level.
func (l *Logger) Debug() *HandlerBuilder {
	return &HandlerBuilder{backend: l.backend, level: DebugLevel}
}

// Info returns a builder that logs at info level.
func (l *Logger) Info() *HandlerBuilder {
	return &HandlerBuilder{backend: l.backend, level: InfoLevel}
}

// Warn returns a builder that logs at warn level.
func (l *Logger) Warn() *HandlerBuilder {
	return &HandlerBuilder{backend: l.backend, level: WarnLevel}
}

// Error returns a builder that logs at error level.
func (l *Logger) Error() *HandlerBuilder {
	return &HandlerBuilder{backend: l.backend, level: ErrorLevel}
}

// HandlerBuilder builds logging flow stages at a fixed level.
type HandlerBuilder struct {
	backend Adapter
	level   LogLevel
}

func (hb *HandlerBuilder) log(ctx context.Context, msg string, attrs ...Attribute) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !hb.backend.IsLevelEnabled(ctx, hb.level) {
		return
	}
	hb.backend.Log(ctx, hb.level, msg, attrs...)
}

// formatPreview creates a readable preview of data, replacing newlines so
// the preview stays on one log line.
func formatPreview(data []byte) string {
	if len(data) == 0 {
		return "<empty>"
	}
	preview := strings.ReplaceAll(string(data), "\n", "\\n")
	return fmt.Sprintf("%q", preview)
}
