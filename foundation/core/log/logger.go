// File: logger.go
// Title: Core Logger Implementation
// Description: Logger with persistent context fields, pluggable formatters and
//              integration with the structured error type.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging
// - 2025-03-02 v0.2.0: Session context, Critical, serialized writes

package log

import (
	"errors"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	derror "github.com/msto63/dcmd/foundation/core/error"
)

// Logger writes structured entries. All With* methods return a modified copy;
// the receiver is never changed.
type Logger struct {
	level     Level
	formatter Formatter
	output    io.Writer
	name      string
	sessionID string

	contextFields Fields
	enableCaller  bool

	// shared by all copies derived from the same root so that entries
	// written to one output never interleave
	writeMu *sync.Mutex
	mutex   sync.RWMutex
}

// Config is the constructor input for NewWithConfig
type Config struct {
	Level        Level
	Format       Format
	Output       io.Writer
	Name         string
	EnableCaller bool
}

// New creates a logger writing text to stderr at the default level
func New() *Logger {
	return NewWithConfig(Config{Level: DefaultLevel(), Format: FormatText})
}

// NewWithConfig creates a logger from cfg
func NewWithConfig(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	return &Logger{
		level:         cfg.Level,
		formatter:     GetFormatter(cfg.Format),
		output:        out,
		name:          cfg.Name,
		contextFields: make(Fields),
		enableCaller:  cfg.EnableCaller,
		writeMu:       &sync.Mutex{},
	}
}

// Discard returns a logger that drops everything; handy in tests
func Discard() *Logger {
	return NewWithConfig(Config{Level: LevelAudit + 1, Output: io.Discard})
}

func (l *Logger) derive(mutate func(c *Logger)) *Logger {
	l.mutex.RLock()
	c := &Logger{
		level:         l.level,
		formatter:     l.formatter,
		output:        l.output,
		name:          l.name,
		sessionID:     l.sessionID,
		contextFields: l.contextFields.Merge(nil),
		enableCaller:  l.enableCaller,
		writeMu:       l.writeMu,
	}
	l.mutex.RUnlock()
	mutate(c)
	return c
}

// WithLevel returns a copy with a different minimum level
func (l *Logger) WithLevel(level Level) *Logger {
	return l.derive(func(c *Logger) { c.level = level })
}

// WithFormat returns a copy rendering with format
func (l *Logger) WithFormat(format Format) *Logger {
	return l.derive(func(c *Logger) { c.formatter = GetFormatter(format) })
}

// WithOutput returns a copy writing to output
func (l *Logger) WithOutput(output io.Writer) *Logger {
	return l.derive(func(c *Logger) {
		c.output = output
		c.writeMu = &sync.Mutex{}
	})
}

// WithName returns a copy with a logger name
func (l *Logger) WithName(name string) *Logger {
	return l.derive(func(c *Logger) { c.name = name })
}

// WithSession returns a copy tagging entries with a session id
func (l *Logger) WithSession(sessionID string) *Logger {
	return l.derive(func(c *Logger) { c.sessionID = sessionID })
}

// WithField returns a copy carrying one more persistent field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.derive(func(c *Logger) { c.contextFields[key] = value })
}

// WithFields returns a copy carrying additional persistent fields
func (l *Logger) WithFields(fields Fields) *Logger {
	return l.derive(func(c *Logger) {
		for k, v := range fields {
			c.contextFields[k] = v
		}
	})
}

func (l *Logger) Trace(message string, fields ...Fields) { l.log(LevelTrace, message, nil, fields...) }
func (l *Logger) Debug(message string, fields ...Fields) { l.log(LevelDebug, message, nil, fields...) }
func (l *Logger) Info(message string, fields ...Fields)  { l.log(LevelInfo, message, nil, fields...) }
func (l *Logger) Warn(message string, fields ...Fields)  { l.log(LevelWarn, message, nil, fields...) }
func (l *Logger) Error(message string, fields ...Fields) { l.log(LevelError, message, nil, fields...) }
func (l *Logger) Audit(message string, fields ...Fields) { l.log(LevelAudit, message, nil, fields...) }

// Fatal logs at fatal level and exits the process
func (l *Logger) Fatal(message string, fields ...Fields) {
	l.log(LevelFatal, message, nil, fields...)
	os.Exit(1)
}

// Critical logs at fatal level without exiting
func (l *Logger) Critical(message string, err error, fields ...Fields) {
	l.log(LevelFatal, message, err, fields...)
}

// ErrorWithErr logs an error entry carrying err
func (l *Logger) ErrorWithErr(message string, err error, fields ...Fields) {
	l.log(LevelError, message, err, fields...)
}

// WarnWithErr logs a warning entry carrying err
func (l *Logger) WarnWithErr(message string, err error, fields ...Fields) {
	l.log(LevelWarn, message, err, fields...)
}

// LogError logs err at a level derived from its severity when it is a
// structured error, and at error level otherwise
func (l *Logger) LogError(err error) {
	if err == nil {
		return
	}
	var dErr *derror.Error
	if !errors.As(err, &dErr) {
		l.log(LevelError, err.Error(), err)
		return
	}

	fields := Fields{
		"error_code":     string(dErr.Code()),
		"error_severity": dErr.Severity().String(),
	}
	if op := dErr.Operation(); op != "" {
		fields["error_operation"] = op
	}
	for k, v := range dErr.Details() {
		fields["error_"+k] = v
	}

	level := LevelError
	switch dErr.Severity() {
	case derror.SeverityLow:
		level = LevelInfo
	case derror.SeverityMedium:
		level = LevelWarn
	case derror.SeverityCritical:
		level = LevelFatal
	}
	l.log(level, err.Error(), err, fields)
}

// StartTimer starts a timer that logs through l when stopped
func (l *Logger) StartTimer(operation string) *Timer {
	return NewTimer(l, operation)
}

// IsLevelEnabled reports whether entries at level would be written
func (l *Logger) IsLevelEnabled(level Level) bool {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return level.ShouldLog(l.level)
}

// GetLevel returns the minimum level
func (l *Logger) GetLevel() Level {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.level
}

// SetLevel changes the minimum level in place
func (l *Logger) SetLevel(level Level) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.level = level
}

func (l *Logger) log(level Level, message string, err error, fields ...Fields) {
	l.mutex.RLock()
	if !level.ShouldLog(l.level) {
		l.mutex.RUnlock()
		return
	}

	entry := NewEntry(level, message)
	entry.Logger = l.name
	entry.SessionID = l.sessionID
	entry.Error = err
	for k, v := range l.contextFields {
		entry.Fields[k] = v
	}
	for _, set := range fields {
		for k, v := range set {
			entry.Fields[k] = v
		}
	}
	if l.enableCaller {
		if function, file, line, ok := caller(3); ok {
			entry.Caller = &CallerInfo{Function: function, File: file, Line: line}
		}
	}
	formatter, output, writeMu := l.formatter, l.output, l.writeMu
	l.mutex.RUnlock()

	formatted, ferr := formatter.Format(entry)
	if ferr != nil {
		return
	}
	writeMu.Lock()
	_, _ = output.Write(formatted)
	writeMu.Unlock()
}

func caller(skip int) (function, file string, line int, ok bool) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "", "", 0, false
	}
	function = "unknown"
	if fn := runtime.FuncForPC(pc); fn != nil {
		function = fn.Name()
		if idx := strings.LastIndex(function, "."); idx != -1 {
			function = function[idx+1:]
		}
	}
	if idx := strings.LastIndex(file, "/"); idx != -1 {
		file = file[idx+1:]
	}
	return function, file, line, true
}

var (
	defaultLogger   = New()
	defaultLoggerMu sync.RWMutex
)

// GetDefault returns the process default logger
func GetDefault() *Logger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process default logger
func SetDefault(logger *Logger) {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	defaultLogger = logger
}
