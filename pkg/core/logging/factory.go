// ============================================================================
// dcmd - Declarative Command Dispatcher
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating loggers from configuration
// Author:      Mike Stoffels
// Created:     2025-03-15
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	dlog "github.com/msto63/dcmd/foundation/core/log"
)

var (
	// log files shared by every logger writing to the same path
	fileOutputs   = make(map[string]*os.File)
	fileOutputsMu sync.Mutex
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Logger name
	Name string

	// Log level (trace, debug, info, warn, error, fatal)
	Level string

	// Output format: "json", "text", "console" or "logfmt" (default: text)
	Format string

	// Output: "stderr", "stdout", "discard" or a file path (default: stderr)
	Output string

	// Additional outputs besides Output
	AdditionalOutputs []io.Writer

	// Record the calling function in each entry
	EnableCaller bool
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(name string) LoggerConfig {
	return LoggerConfig{
		Name:   name,
		Level:  "info",
		Format: "text",
		Output: "stderr",
	}
}

// NewLogger creates a Foundation logger from cfg. An output file that cannot
// be opened falls back to stderr.
func NewLogger(cfg LoggerConfig) *dlog.Logger {
	output := openOutput(cfg.Output)

	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	return dlog.NewWithConfig(dlog.Config{
		Level:        parseLevel(cfg.Level),
		Format:       parseFormat(cfg.Format),
		Output:       output,
		Name:         cfg.Name,
		EnableCaller: cfg.EnableCaller,
	})
}

// NewSimpleLogger creates a logger with the default configuration
func NewSimpleLogger(name string) *dlog.Logger {
	return NewLogger(DefaultLoggerConfig(name))
}

func openOutput(output string) io.Writer {
	switch strings.ToLower(output) {
	case "", "stderr":
		return os.Stderr
	case "stdout":
		return os.Stdout
	case "discard", "none":
		return io.Discard
	}

	fileOutputsMu.Lock()
	defer fileOutputsMu.Unlock()

	if f, ok := fileOutputs[output]; ok {
		return f
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return os.Stderr
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return os.Stderr
	}
	fileOutputs[output] = f
	return f
}

// CloseOutputs closes every log file opened by NewLogger
func CloseOutputs() error {
	fileOutputsMu.Lock()
	defer fileOutputsMu.Unlock()

	var firstErr error
	for path, f := range fileOutputs {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(fileOutputs, path)
	}
	return firstErr
}

// parseLevel converts a string level to dlog.Level
func parseLevel(level string) dlog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return dlog.LevelTrace
	case "debug":
		return dlog.LevelDebug
	case "info":
		return dlog.LevelInfo
	case "warn", "warning":
		return dlog.LevelWarn
	case "error":
		return dlog.LevelError
	case "fatal":
		return dlog.LevelFatal
	default:
		return dlog.LevelInfo
	}
}

// parseFormat converts a string format to dlog.Format
func parseFormat(format string) dlog.Format {
	f, err := dlog.ParseFormat(format)
	if err != nil {
		return dlog.FormatText
	}
	return f
}
