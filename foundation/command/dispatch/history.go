// File: history.go
// Title: Command History
// Description: Append-only record of dispatched command lines with an
//              in-memory implementation.
// Author: msto63
// Version: v0.1.0
// Created: 2025-03-10
// Modified: 2025-03-12

package dispatch

import (
	"context"
	"sync"
	"time"
)

// Entry is one remembered command line
type Entry struct {
	ID      string
	Line    string
	Args    []string
	At      time.Time
	Session string
}

// History stores entries oldest first. It is bounded only by Clear.
type History interface {
	Append(ctx context.Context, e Entry) error
	Entries(ctx context.Context) ([]Entry, error)
	Clear(ctx context.Context) error
}

// MemoryHistory keeps entries for the lifetime of the process
type MemoryHistory struct {
	entries []Entry
	mutex   sync.RWMutex
}

// NewMemoryHistory creates an empty in-memory history
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

func (h *MemoryHistory) Append(_ context.Context, e Entry) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	e.Args = append([]string(nil), e.Args...)
	h.entries = append(h.entries, e)
	return nil
}

func (h *MemoryHistory) Entries(_ context.Context) ([]Entry, error) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return append([]Entry(nil), h.entries...), nil
}

func (h *MemoryHistory) Clear(_ context.Context) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.entries = nil
	return nil
}

// Recent returns up to n entries newest first. Repeated lines are collapsed
// to their most recent occurrence unless keepRepeats is set.
func Recent(entries []Entry, n int, keepRepeats bool) []Entry {
	var out []Entry
	seen := make(map[string]bool)
	for i := len(entries) - 1; i >= 0 && (n <= 0 || len(out) < n); i-- {
		e := entries[i]
		if !keepRepeats {
			if seen[e.Line] {
				continue
			}
			seen[e.Line] = true
		}
		out = append(out, e)
	}
	return out
}
