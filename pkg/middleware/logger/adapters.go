package logger

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/rs/zerolog"
)

// StandardAdapter uses the standard library log package. Levels are
// rendered as message prefixes since log has no level support.
type StandardAdapter struct {
	logger *log.Logger
}

// NewStandardAdapter creates an adapter for the standard log package.
func NewStandardAdapter(logger *log.Logger) *StandardAdapter {
	return &StandardAdapter{logger: logger}
}

// Log implements the Adapter interface.
func (s *StandardAdapter) Log(_ context.Context, level LogLevel, msg string, attrs ...Attribute) {
	if len(attrs) == 0 {
		s.logger.Printf("[%s] %s", levelName(level), msg)
		return
	}

	var b strings.Builder
	for _, attr := range attrs {
		fmt.Fprintf(&b, " %s=%v", attr.Key, attr.Value)
	}
	s.logger.Printf("[%s] %s%s", levelName(level), msg, b.String())
}

// IsLevelEnabled always returns true; the standard logger has no levels.
func (s *StandardAdapter) IsLevelEnabled(_ context.Context, _ LogLevel) bool {
	return true
}

func levelName(level LogLevel) string {
	switch level {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ZerologAdapter adapts a zerolog.Logger to the Adapter interface.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates an adapter for zerolog.
//
// Example:
//
//	zl := zerolog.New(os.Stderr).With().Timestamp().Logger()
//	log := logger.New(logger.NewZerologAdapter(zl))
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// Log implements the Adapter interface with structured zerolog events.
func (z *ZerologAdapter) Log(_ context.Context, level LogLevel, msg string, attrs ...Attribute) {
	var evt *zerolog.Event

	switch level {
	case DebugLevel:
		evt = z.logger.Debug()
	case InfoLevel:
		evt = z.logger.Info()
	case WarnLevel:
		evt = z.logger.Warn()
	case ErrorLevel:
		evt = z.logger.Error()
	default:
		evt = z.logger.Info()
	}

	for _, attr := range attrs {
		evt = evt.Interface(attr.Key, attr.Value)
	}
	evt.Msg(msg)
}

// IsLevelEnabled checks if the given level is enabled in zerolog.
func (z *ZerologAdapter) IsLevelEnabled(_ context.Context, level LogLevel) bool {
	return z.logger.GetLevel() <= logLevelToZerolog(level)
}

func logLevelToZerolog(level LogLevel) zerolog.Level {
	switch level {
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
