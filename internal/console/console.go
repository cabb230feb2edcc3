// ============================================================================
// dcmd - Declarative Command Dispatcher
// ============================================================================
//
// Package:     console
// Description: Interactive read-dispatch-print loop
// Author:      Mike Stoffels
// Created:     2025-03-15
// License:     MIT
// ============================================================================

package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/msto63/dcmd/foundation/command"
	"github.com/msto63/dcmd/foundation/command/dispatch"
	"github.com/msto63/dcmd/foundation/command/registry"
	"github.com/msto63/dcmd/foundation/command/tokenize"
	"github.com/msto63/dcmd/pkg/core/logging"
	"github.com/msto63/dcmd/pkg/core/version"
)

// Console meta tokens handled before dispatch
const (
	listConsole = `\?`
)

var exitTokens = map[string]bool{"exit": true, "quit": true}

// Options configures a console
type Options struct {
	Prompt     string
	NoColor    bool
	HideBanner bool
}

// Console reads lines from the runtime's input, dispatches them and prints
// the outcome. Ctrl-C interrupts the running command, not the console.
type Console struct {
	rt     *dispatch.Runtime
	out    io.Writer
	prompt string
	banner bool
	styles Styles
	logger *logging.Logger
}

// New creates a console over rt
func New(rt *dispatch.Runtime, opts Options) *Console {
	if opts.Prompt == "" {
		opts.Prompt = "dcmd> "
	}
	out := rt.Out()
	return &Console{
		rt:     rt,
		out:    out,
		prompt: opts.Prompt,
		banner: !opts.HideBanner,
		styles: newStyles(lipgloss.NewRenderer(out), !opts.NoColor),
		logger: logging.Wrap(rt.Logger(), "console"),
	}
}

// Run loops until an exit token, end of input or ctx is done
func (c *Console) Run(ctx context.Context) error {
	if c.banner {
		fmt.Fprintln(c.out, c.Banner())
	}
	c.logger.Debug("Console started", "session", c.rt.SessionID())

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fmt.Fprint(c.out, c.styles.Prompt.Render(c.prompt))
		line, err := c.rt.In().ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case exitTokens[strings.ToLower(line)]:
			c.logger.Debug("Console closed", "session", c.rt.SessionID())
			return nil
		case line == listConsole:
			fmt.Fprint(c.out, c.rt.List(registry.Console))
		default:
			c.Execute(ctx, line)
		}

		if eof {
			fmt.Fprintln(c.out)
			return nil
		}
	}
}

// Execute dispatches one line, prints its outcome and records it in the
// history
func (c *Console) Execute(ctx context.Context, line string) command.Result {
	cmdCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	tokens, err := tokenize.Split(line)
	if err != nil {
		res := command.Result{Outcome: command.BindingError, Err: err}
		c.report(res)
		return res
	}

	res := c.rt.Dispatch(cmdCtx, tokens)
	c.report(res)

	if err := c.rt.Remember(ctx, line, tokens, res); err != nil {
		c.logger.Warn("Failed to record history", "error", err)
	}
	return res
}

// Banner returns the greeting shown when the console starts
func (c *Console) Banner() string {
	text := fmt.Sprintf("dcmd %s\nType 'help' to list commands, '%s' for console commands, 'exit' to quit.",
		version.Platform, listConsole)
	return c.styles.Banner.Render(text)
}

func (c *Console) report(res command.Result) {
	switch res.Outcome {
	case command.Success:
		if res.Value.IsValid() {
			fmt.Fprintln(c.out, c.styles.Value.Render(res.Value.String()))
		}
	case command.NotFound:
		fmt.Fprintln(c.out, c.styles.Warning.Render(res.Err.Error()))
		fmt.Fprintln(c.out, c.styles.Muted.Render("Type 'help' to list the available commands."))
	case command.BindingError:
		fmt.Fprintln(c.out, c.styles.Error.Render("Invalid arguments: "+errorText(res.Err)))
		if res.Command != "" {
			fmt.Fprintln(c.out, c.styles.Muted.Render("Type 'help -c "+res.Command+"' for usage."))
		}
	case command.ExecutionError:
		fmt.Fprintln(c.out, c.styles.Error.Render("Error: "+errorText(res.Err)))
	}
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
