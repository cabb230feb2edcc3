// ============================================================================
// dcmd - Declarative Command Dispatcher
// ============================================================================
//
// Package:     logging
// Description: Key-value logger on top of Foundation logging
// Author:      Mike Stoffels
// Created:     2025-03-15
// License:     MIT
// ============================================================================

package logging

import (
	"fmt"

	dlog "github.com/msto63/dcmd/foundation/core/log"
)

// Level represents log severity for the key-value logger
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

func (l Level) foundation() dlog.Level {
	switch l {
	case LevelDebug:
		return dlog.LevelDebug
	case LevelWarn:
		return dlog.LevelWarn
	case LevelError:
		return dlog.LevelError
	default:
		return dlog.LevelInfo
	}
}

// Logger wraps the Foundation logger with key-value methods, used by the
// internal packages: logger.Info("Manifest loaded", "file", path, "commands", n)
type Logger struct {
	*dlog.Logger
	name string
}

// New creates a key-value logger with the default configuration
func New(name string) *Logger {
	return &Logger{
		Logger: NewSimpleLogger(name),
		name:   name,
	}
}

// Wrap creates a key-value logger on top of an existing Foundation logger.
// A nil logger discards everything.
func Wrap(logger *dlog.Logger, name string) *Logger {
	if logger == nil {
		logger = dlog.Discard()
	}
	if name != "" {
		logger = logger.WithName(name)
	}
	return &Logger{Logger: logger, name: name}
}

// Name returns the logger name
func (l *Logger) Name() string {
	return l.name
}

// Foundation returns the underlying Foundation logger
func (l *Logger) Foundation() *dlog.Logger {
	return l.Logger
}

// WithLevel returns a new logger with the specified level
func (l *Logger) WithLevel(level Level) *Logger {
	return &Logger{
		Logger: l.Logger.WithLevel(level.foundation()),
		name:   l.name,
	}
}

// Debug logs a debug message with key-value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug(msg, toFields(keysAndValues...))
}

// Info logs an info message with key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Info(msg, toFields(keysAndValues...))
}

// Warn logs a warning message with key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.Logger.Warn(msg, toFields(keysAndValues...))
}

// Error logs an error message with key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.Logger.Error(msg, toFields(keysAndValues...))
}

// toFields converts key-value pairs to dlog.Fields. Non-string keys are
// rendered with %v, a trailing key without value is dropped.
func toFields(keysAndValues ...interface{}) dlog.Fields {
	if len(keysAndValues) < 2 {
		return nil
	}

	fields := make(dlog.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
