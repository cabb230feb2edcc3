package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msto63/dcmd/foundation/command"
	"github.com/msto63/dcmd/foundation/command/dispatch"
	"github.com/msto63/dcmd/foundation/command/registry"
	dlog "github.com/msto63/dcmd/foundation/core/log"
	"github.com/msto63/dcmd/internal/commands"
	"github.com/msto63/dcmd/pkg/core/version"
)

func newConsole(t *testing.T, input string, opts Options) (*Console, *dispatch.Runtime, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	rt := dispatch.New(dispatch.Options{
		Out:    out,
		In:     strings.NewReader(input),
		Logger: dlog.Discard(),
	})
	_, errs := rt.Registry().RegisterAll(commands.Core(), registry.Loadable)
	require.Empty(t, errs)
	opts.NoColor = true
	return New(rt, opts), rt, out
}

func TestConsole_RunUntilExit(t *testing.T) {
	c, rt, out := newConsole(t, "greet Ann\n\nrange 1 3\nexit\ngreet Bob\n", Options{HideBanner: true})

	require.NoError(t, c.Run(context.Background()))

	text := out.String()
	assert.Equal(t, 4, strings.Count(text, "dcmd> "))
	assert.Contains(t, text, "Hello, Ann!")
	assert.Contains(t, text, "[1 2 3]")
	assert.NotContains(t, text, "Bob")

	entries, err := rt.History().Entries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "greet Ann", entries[0].Line)
	assert.Equal(t, "range 1 3", entries[1].Line)
}

func TestConsole_EndOfInput(t *testing.T) {
	c, _, out := newConsole(t, "echo hi", Options{Prompt: "> ", HideBanner: true})

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, "> hi\n\n", out.String())
}

func TestConsole_Banner(t *testing.T) {
	c, _, out := newConsole(t, "quit\n", Options{})

	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, out.String(), "dcmd "+version.Platform)
	assert.Contains(t, c.Banner(), "'exit' to quit")
}

func TestConsole_ListConsoleCommands(t *testing.T) {
	c, _, out := newConsole(t, "\\?\nexit\n", Options{HideBanner: true})

	require.NoError(t, c.Run(context.Background()))
	for _, name := range []string{"help", "exec", "obj", "hist", "batch", "load", "vars"} {
		assert.Contains(t, out.String(), name)
	}
}

func TestConsole_Outcomes(t *testing.T) {
	c, rt, out := newConsole(t, "", Options{HideBanner: true})
	ctx := context.Background()

	res := c.Execute(ctx, "nosuch 1 2")
	assert.Equal(t, command.NotFound, res.Outcome)
	assert.Contains(t, out.String(), `command "nosuch" doesn't exist`)
	assert.Contains(t, out.String(), "Type 'help'")

	out.Reset()
	res = c.Execute(ctx, "greet")
	assert.Equal(t, command.BindingError, res.Outcome)
	assert.Contains(t, out.String(), "Invalid arguments:")
	assert.Contains(t, out.String(), "help -c greet")

	out.Reset()
	res = c.Execute(ctx, "range 1 3 -step 0")
	assert.Equal(t, command.ExecutionError, res.Outcome)
	assert.Contains(t, out.String(), "Error:")

	out.Reset()
	res = c.Execute(ctx, `greet "unterminated`)
	assert.Equal(t, command.BindingError, res.Outcome)
	assert.Contains(t, out.String(), "Invalid arguments:")

	entries, err := rt.History().Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "greet", entries[0].Line)
}

func TestConsole_CancelledContext(t *testing.T) {
	c, _, out := newConsole(t, "greet Ann\n", Options{HideBanner: true})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, c.Run(ctx))
	assert.Empty(t, out.String())
}
