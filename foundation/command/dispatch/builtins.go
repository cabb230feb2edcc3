// File: builtins.go
// Title: Console Commands
// Description: Meta-commands registered in the console namespace: help,
//              exec, obj, hist, batch, load and vars.
// Author: msto63
// Version: v0.1.0
// Created: 2025-03-11
// Modified: 2025-03-14

package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/msto63/dcmd/foundation/command"
	"github.com/msto63/dcmd/foundation/command/registry"
	derror "github.com/msto63/dcmd/foundation/core/error"
)

const (
	histName = "hist"

	// HistPrompt is printed after the history listing
	HistPrompt = "Choose one of the commands to execute again or 'q' to exit: "
)

func (r *Runtime) consoleCommands() []command.Definition {
	return []command.Definition{
		{
			Name:        "help",
			Description: "List commands or describe one of them",
			New:         func() command.Command { return &helpCmd{} },
			Params: []command.Param{
				command.Named("-c", "Command to describe", (*helpCmd).SetName),
				command.Named("-console", "Use the console commands", (*helpCmd).SetConsole),
			},
		},
		{
			Name:        "exec",
			Description: "Execute a command line",
			New:         func() command.Command { return &execCmd{} },
			Params: []command.Param{
				command.Positional(1, "line", "Command line to execute", (*execCmd).SetLine),
			},
		},
		{
			Name:        "obj",
			Description: "Store the value produced by a command line",
			New:         func() command.Command { return &objCmd{} },
			Params: []command.Param{
				command.Positional(1, "variable", "Variable name", (*objCmd).SetVariable),
				command.Positional(2, "line", "Command line producing the value", (*objCmd).SetLine),
			},
		},
		{
			Name:        histName,
			Description: "Show the history and execute an entry again",
			New:         func() command.Command { return &histCmd{} },
			Params: []command.Param{
				command.Named("-n", "Number of entries", (*histCmd).SetLimit, command.Default("10")),
				command.Named("-r", "Keep repeated lines", (*histCmd).SetRepeats),
				command.Named("-c", "Clear the history", (*histCmd).SetClear),
			},
		},
		{
			Name:        "batch",
			Description: "Execute the commands of a file",
			New:         func() command.Command { return &batchCmd{} },
			Params: []command.Param{
				command.Positional(1, "file", "Batch file", (*batchCmd).SetFile),
				command.Named("-s", "Stop at the first failure", (*batchCmd).SetStop),
			},
		},
		{
			Name:        "load",
			Description: "Load loadable commands from a source",
			New:         func() command.Command { return &loadCmd{} },
			Params: []command.Param{
				command.Positional(1, "source", "Bundle name or manifest path", (*loadCmd).SetSource),
				command.Named("-merge", "Keep the commands already loaded", (*loadCmd).SetMerge),
			},
		},
		{
			Name:        "vars",
			Description: "List stored objects",
			New:         func() command.Command { return &varsCmd{} },
		},
	}
}

// runtimeOf returns the runtime view that invoked a console command, so
// nested dispatches write to the caller's streams
func runtimeOf(env *command.Env) (*Runtime, error) {
	if env != nil {
		if rt, ok := env.Runner.(*Runtime); ok {
			return rt, nil
		}
	}
	return nil, derror.New("console command invoked outside a dispatch runtime").
		WithCode(derror.CodeInternal)
}

type helpCmd struct {
	name    string
	console bool
}

func (c *helpCmd) SetName(v string)  { c.name = v }
func (c *helpCmd) SetConsole(v bool) { c.console = v }

func (c *helpCmd) Execute(_ context.Context, env *command.Env) error {
	rt, err := runtimeOf(env)
	if err != nil {
		return err
	}
	if c.name != "" {
		text, err := rt.Help(c.name, c.console)
		if err != nil {
			return err
		}
		fmt.Fprint(env.Out, text)
		return nil
	}

	ns, title := registry.Loadable, "Commands:"
	if c.console {
		ns, title = registry.Console, "Console commands:"
	}
	fmt.Fprintln(env.Out, title)
	fmt.Fprint(env.Out, rt.List(ns))
	return nil
}

type execCmd struct {
	line  string
	value command.Value
}

func (c *execCmd) SetLine(v string) { c.line = v }

func (c *execCmd) Execute(ctx context.Context, env *command.Env) error {
	res := env.Runner.RunLine(ctx, c.line)
	if !res.OK() {
		return res.Err
	}
	c.value = res.Value
	return nil
}

func (c *execCmd) Result() any {
	if !c.value.IsValid() {
		return nil
	}
	return c.value
}

type objCmd struct {
	variable string
	line     string
}

func (c *objCmd) SetVariable(v string) { c.variable = v }
func (c *objCmd) SetLine(v string)     { c.line = v }

func (c *objCmd) Execute(ctx context.Context, env *command.Env) error {
	name := strings.TrimPrefix(strings.TrimSpace(c.variable), "$")
	if name == "" {
		return derror.New("variable name is empty").WithCode(derror.CodeInvalidInput)
	}
	res := env.Runner.RunLine(ctx, c.line)
	if !res.OK() {
		return res.Err
	}
	if !res.Value.IsValid() {
		return derror.Newf("command %s produced no value", res.Command).
			WithCode(derror.CodeExecution).
			WithDetail("line", c.line)
	}
	env.Objects.Put(name, res.Value)
	fmt.Fprintf(env.Out, "%s = %s (%s)\n", name, res.Value, res.Value.TypeName())
	return nil
}

type histCmd struct {
	limit   int
	repeats bool
	clear   bool
	value   command.Value
}

func (c *histCmd) SetLimit(v int)    { c.limit = v }
func (c *histCmd) SetRepeats(v bool) { c.repeats = v }
func (c *histCmd) SetClear(v bool)   { c.clear = v }

func (c *histCmd) Execute(ctx context.Context, env *command.Env) error {
	rt, err := runtimeOf(env)
	if err != nil {
		return err
	}
	if c.clear {
		if err := rt.history.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(env.Out, "History cleared")
		return nil
	}

	entries, err := rt.history.Entries(ctx)
	if err != nil {
		return err
	}
	recent := Recent(entries, c.limit, c.repeats)
	if len(recent) == 0 {
		fmt.Fprintln(env.Out, "History is empty")
		return nil
	}
	for i, e := range recent {
		fmt.Fprintf(env.Out, "%3d  %s\n", i+1, e.Line)
	}

	fmt.Fprint(env.Out, HistPrompt)
	answer, readErr := env.In.ReadString('\n')
	answer = strings.TrimSpace(answer)
	if answer == "" {
		if readErr != nil {
			fmt.Fprintln(env.Out)
		}
		return nil
	}
	if strings.EqualFold(answer, "q") {
		return nil
	}

	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(recent) {
		return derror.Newf("%q is not a history entry", answer).WithCode(derror.CodeInvalidInput)
	}
	chosen := recent[n-1]
	fmt.Fprintln(env.Out, chosen.Line)

	res := rt.Dispatch(ctx, chosen.Args)
	if err := rt.Remember(ctx, chosen.Line, chosen.Args, res); err != nil {
		rt.logger.LogError(err)
	}
	if !res.OK() {
		return res.Err
	}
	c.value = res.Value
	return nil
}

func (c *histCmd) Result() any {
	if !c.value.IsValid() {
		return nil
	}
	return c.value
}

type batchCmd struct {
	file string
	stop bool
}

func (c *batchCmd) SetFile(v string) { c.file = v }
func (c *batchCmd) SetStop(v bool)   { c.stop = v }

func (c *batchCmd) Execute(ctx context.Context, env *command.Env) error {
	rt, err := runtimeOf(env)
	if err != nil {
		return err
	}
	report, err := rt.RunBatchFile(ctx, c.file, BatchOptions{StopOnError: c.stop})
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Out, report.Summary())
	if report.Stopped {
		return derror.Newf("batch stopped at line %d", report.StoppedAt).
			WithCode(derror.CodeExecution).
			WithDetail("file", c.file)
	}
	return nil
}

type loadCmd struct {
	source string
	merge  bool
}

func (c *loadCmd) SetSource(v string) { c.source = v }
func (c *loadCmd) SetMerge(v bool)    { c.merge = v }

func (c *loadCmd) Execute(ctx context.Context, env *command.Env) error {
	rt, err := runtimeOf(env)
	if err != nil {
		return err
	}
	n, err := rt.Load(ctx, c.source, c.merge)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "Loaded %d commands from %s\n", n, c.source)
	return nil
}

type varsCmd struct{}

func (c *varsCmd) Execute(_ context.Context, env *command.Env) error {
	rt, err := runtimeOf(env)
	if err != nil {
		return err
	}
	names := rt.objects.Names()
	if len(names) == 0 {
		fmt.Fprintln(env.Out, "No objects stored")
		return nil
	}
	tw := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
	for _, name := range names {
		v, _ := rt.objects.Lookup(name)
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", name, v.TypeName(), v)
	}
	return tw.Flush()
}
