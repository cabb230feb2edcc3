// File: timer.go
// Title: Performance Timer
// Description: Measures an operation's duration and logs it on completion.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-03-02

package log

import (
	"time"
)

// Timer measures one operation. It reads the monotonic clock via time.Since.
type Timer struct {
	logger    *Logger
	operation string
	startTime time.Time
	fields    Fields
	level     Level
	stopped   bool
	elapsed   time.Duration
}

// NewTimer starts a timer for operation
func NewTimer(logger *Logger, operation string) *Timer {
	return &Timer{
		logger:    logger,
		operation: operation,
		startTime: time.Now(),
		fields:    make(Fields),
		level:     LevelDebug,
	}
}

// WithLevel sets the level of the completion entry
func (t *Timer) WithLevel(level Level) *Timer {
	t.level = level
	return t
}

// WithField adds a field to the completion entry
func (t *Timer) WithField(key string, value interface{}) *Timer {
	t.fields[key] = value
	return t
}

// Elapsed returns the time since start, or the final duration once stopped
func (t *Timer) Elapsed() time.Duration {
	if t.stopped {
		return t.elapsed
	}
	return time.Since(t.startTime)
}

func (t *Timer) finish() (time.Duration, bool) {
	if t.stopped {
		return t.elapsed, false
	}
	t.elapsed = time.Since(t.startTime)
	t.stopped = true
	t.fields["operation"] = t.operation
	t.fields["duration_ms"] = durationMillis(t.elapsed)
	return t.elapsed, true
}

// Stop stops the timer and logs the completion at the timer level
func (t *Timer) Stop() time.Duration {
	elapsed, first := t.finish()
	if first && t.logger != nil {
		t.logger.log(t.level, t.operation+" completed", nil, t.fields)
	}
	return elapsed
}

// StopWithError stops the timer and logs err at error level
func (t *Timer) StopWithError(err error) time.Duration {
	elapsed, first := t.finish()
	if first && t.logger != nil {
		t.fields["success"] = false
		t.logger.log(LevelError, t.operation+" failed", err, t.fields)
	}
	return elapsed
}

// Cancel stops the timer without logging
func (t *Timer) Cancel() time.Duration {
	elapsed, _ := t.finish()
	return elapsed
}

// StartTime returns when the timer was started
func (t *Timer) StartTime() time.Time {
	return t.startTime
}
