// File: level.go
// Title: Log Level Definitions
// Description: Log levels used to filter output, with parsing from config
//              strings and short/colour renderings for the console format.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-03-02

package log

import (
	"strings"
)

// Level represents the importance of a log message
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	// LevelFatal marks failures the process cannot recover from, or that the
	// caller recovered from only by abandoning the operation
	LevelFatal
	// LevelAudit is always written regardless of the configured minimum
	LevelAudit
)

var levelNames = map[Level][2]string{
	LevelTrace: {"trace", "TRC"},
	LevelDebug: {"debug", "DBG"},
	LevelInfo:  {"info", "INF"},
	LevelWarn:  {"warn", "WRN"},
	LevelError: {"error", "ERR"},
	LevelFatal: {"fatal", "FTL"},
	LevelAudit: {"audit", "AUD"},
}

// String returns the lower-case level name
func (l Level) String() string {
	if n, ok := levelNames[l]; ok {
		return n[0]
	}
	return "unknown"
}

// ShortString returns the three letter level tag
func (l Level) ShortString() string {
	if n, ok := levelNames[l]; ok {
		return n[1]
	}
	return "???"
}

// Color returns the ANSI colour sequence used by the console formatter
func (l Level) Color() string {
	switch l {
	case LevelTrace:
		return "\033[37m"
	case LevelDebug:
		return "\033[36m"
	case LevelInfo:
		return "\033[32m"
	case LevelWarn:
		return "\033[33m"
	case LevelError:
		return "\033[31m"
	case LevelFatal:
		return "\033[35m"
	case LevelAudit:
		return "\033[34m"
	default:
		return "\033[0m"
	}
}

// ShouldLog reports whether an entry at l passes the minimum level
func (l Level) ShouldLog(minLevel Level) bool {
	if l == LevelAudit {
		return true
	}
	return l >= minLevel
}

// ParseLevel parses a level name or its short tag
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "trc":
		return LevelTrace, nil
	case "debug", "dbg":
		return LevelDebug, nil
	case "info", "inf", "information":
		return LevelInfo, nil
	case "warn", "wrn", "warning":
		return LevelWarn, nil
	case "error", "err":
		return LevelError, nil
	case "fatal", "ftl":
		return LevelFatal, nil
	case "audit", "aud":
		return LevelAudit, nil
	default:
		return LevelInfo, &ParseError{Input: level, Type: "level"}
	}
}

// ParseError reports an unparseable level or format string
type ParseError struct {
	Input string
	Type  string
}

func (e *ParseError) Error() string {
	return "invalid " + e.Type + ": " + e.Input
}

// DefaultLevel is the level used when nothing is configured
func DefaultLevel() Level {
	return LevelInfo
}
