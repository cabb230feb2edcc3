// File: entry.go
// Title: Log Entry Structure
// Description: A single log record with its context and custom fields.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-03-02

package log

import (
	"time"
)

// Entry is one log record
type Entry struct {
	Timestamp time.Time
	Level     Level
	Message   string
	Logger    string
	SessionID string
	Fields    Fields
	Error     error
	Duration  time.Duration
	Caller    *CallerInfo
}

// CallerInfo locates the call site of a log statement
type CallerInfo struct {
	Function string
	File     string
	Line     int
}

// Fields are key-value pairs attached to an entry
type Fields map[string]interface{}

// Err wraps an error as a field set
func Err(err error) Fields {
	return Fields{"error": err}
}

// Merge returns a new field set holding f overlaid with other
func (f Fields) Merge(other Fields) Fields {
	result := make(Fields, len(f)+len(other))
	for k, v := range f {
		result[k] = v
	}
	for k, v := range other {
		result[k] = v
	}
	return result
}

// Clone copies the field set
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	return f.Merge(nil)
}

// NewEntry creates an entry stamped with the current time
func NewEntry(level Level, message string) *Entry {
	return &Entry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Fields:    make(Fields),
	}
}
