package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/msto63/dcmd/foundation/command"
	derror "github.com/msto63/dcmd/foundation/core/error"
)

// Greet prints a greeting
type Greet struct {
	name  string
	loud  bool
	times int
}

func (g *Greet) SetName(v string) { g.name = v }
func (g *Greet) SetLoud(v bool)   { g.loud = v }
func (g *Greet) SetTimes(v int)   { g.times = v }

func (g *Greet) Execute(_ context.Context, env *command.Env) error {
	if g.times < 0 {
		return derror.Newf("-times must not be negative, got %d", g.times).WithCode(derror.CodeInvalidInput)
	}
	msg := "Hello, " + g.name + "!"
	if g.loud {
		msg = strings.ToUpper(msg)
	}
	for i := 0; i < g.times; i++ {
		fmt.Fprintln(env.Out, msg)
	}
	return nil
}

// Echo produces its text; the console prints produced values
type Echo struct {
	text  string
	upper bool
}

func (e *Echo) SetText(v string) { e.text = v }
func (e *Echo) SetUpper(v bool)  { e.upper = v }
func (e *Echo) Result() any      { return e.text }

func (e *Echo) Execute(context.Context, *command.Env) error {
	if e.upper {
		e.text = strings.ToUpper(e.text)
	}
	return nil
}
