// File: command.go
// Title: Command Contracts
// Description: The Command interface, the execution environment handed to
//              commands and the optional capabilities a command can offer.
// Author: msto63
// Version: v0.1.0
// Created: 2025-03-04
// Modified: 2025-03-04

package command

import (
	"bufio"
	"context"
	"io"
	"time"

	dlog "github.com/msto63/dcmd/foundation/core/log"
)

// Command is an executable unit. A fresh instance is created and bound for
// every invocation.
type Command interface {
	Execute(ctx context.Context, env *Env) error
}

// Producer is implemented by commands that yield a value on success
type Producer interface {
	Result() any
}

// Timed is implemented by commands that want their elapsed execution time
// recorded on the instance. Embed Base to get it.
type Timed interface {
	SetElapsed(time.Duration)
	Elapsed() time.Duration
}

// Base can be embedded in command types
type Base struct {
	elapsed time.Duration
}

func (b *Base) SetElapsed(d time.Duration) { b.elapsed = d }
func (b *Base) Elapsed() time.Duration     { return b.elapsed }

// Lookup resolves variables for dynamic parameters
type Lookup interface {
	Lookup(name string) (Value, bool)
}

// ObjectStore is the session's named-object store
type ObjectStore interface {
	Lookup
	Put(name string, v Value)
}

// Runner executes nested command lines
type Runner interface {
	Run(ctx context.Context, tokens []string, console bool) Result
	RunLine(ctx context.Context, line string) Result
}

// Env carries the session collaborators into Execute
type Env struct {
	Out     io.Writer
	In      *bufio.Reader
	Logger  *dlog.Logger
	Objects ObjectStore
	Runner  Runner
	Session string
}

func (e *Env) logger() *dlog.Logger {
	if e == nil || e.Logger == nil {
		return dlog.Discard()
	}
	return e.Logger
}

func (e *Env) objects() Lookup {
	if e == nil || e.Objects == nil {
		return emptyLookup{}
	}
	return e.Objects
}

type emptyLookup struct{}

func (emptyLookup) Lookup(string) (Value, bool) { return Value{}, false }
