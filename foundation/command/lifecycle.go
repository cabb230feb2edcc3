// File: lifecycle.go
// Title: Command Lifecycle
// Description: Binds, executes and times one command invocation and
//              translates every failure into a dispatch outcome.
// Author: msto63
// Version: v0.1.0
// Created: 2025-03-04
// Modified: 2025-03-18

package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime/debug"
	"strings"
	"time"

	derror "github.com/msto63/dcmd/foundation/core/error"
	dlog "github.com/msto63/dcmd/foundation/core/log"
)

// Outcome is the externally observable result kind of a dispatch
type Outcome int

const (
	Success Outcome = iota
	BindingError
	ExecutionError
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case BindingError:
		return "binding error"
	case ExecutionError:
		return "execution error"
	case NotFound:
		return "not found"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result reports one invocation
type Result struct {
	Outcome Outcome
	Command string
	// Value is set when a Producer command succeeds
	Value   Value
	Err     error
	Elapsed time.Duration
}

// OK reports whether the invocation succeeded
func (r Result) OK() bool { return r.Outcome == Success }

// NotFoundResult is the result for a name without a registered command
func NotFoundResult(name string) Result {
	return Result{
		Outcome: NotFound,
		Command: name,
		Err: derror.Newf("command %q doesn't exist", name).
			WithCode(derror.CodeNotFound).
			WithDetail("command", name),
	}
}

// Invoke binds tokens to a fresh instance of d and executes it. Binding
// failures return before Execute is called. Errors returned by Execute and
// panics raised by it both become ExecutionError results; panics are logged
// at fatal level but never propagate. A missing Out discards output and a
// missing In reads as empty; env itself is not modified.
func Invoke(ctx context.Context, d *Declarations, tokens []string, env *Env) Result {
	var e Env
	if env != nil {
		e = *env
	}
	env = &e
	if env.Out == nil {
		env.Out = io.Discard
	}
	if env.In == nil {
		env.In = bufio.NewReader(strings.NewReader(""))
	}
	logger := env.logger().WithField("command", d.name)
	res := Result{Command: d.name}

	cmd, err := d.Bind(tokens, env.objects())
	if err != nil {
		logger.LogError(err)
		res.Outcome = BindingError
		res.Err = err
		return res
	}

	timer := dlog.NewTimer(logger, "command "+d.name)
	stack, err := execute(ctx, cmd, env)
	if err == nil {
		res.Elapsed = timer.Stop()
	} else {
		res.Elapsed = timer.Cancel()
	}
	if t, ok := cmd.(Timed); ok {
		t.SetElapsed(res.Elapsed)
	}

	switch {
	case stack != nil:
		logger.Critical("command panicked", err, dlog.Fields{
			"stack":       string(stack),
			"duration_ms": res.Elapsed.Milliseconds(),
		})
		res.Outcome = ExecutionError
		res.Err = err
	case err != nil:
		wrapped := derror.Wrap(err, "command "+d.name).
			WithCode(derror.CodeExecution).
			WithOperation("execute").
			WithDetail("command", d.name)
		logger.LogError(wrapped)
		res.Outcome = ExecutionError
		res.Err = wrapped
	default:
		res.Outcome = Success
		if p, ok := cmd.(Producer); ok {
			res.Value = ValueOf(p.Result())
		}
	}
	return res
}

func execute(ctx context.Context, cmd Command, env *Env) (stack []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack = debug.Stack()
			err = derror.Newf("unexpected failure: %v", r).
				WithCode(derror.CodeExecution).
				WithSeverity(derror.SeverityCritical).
				WithDetail("panic", fmt.Sprint(r))
		}
	}()
	return nil, cmd.Execute(ctx, env)
}
