// ============================================================================
// dcmd - Declarative Command Dispatcher
// ============================================================================
//
// Package:     loader
// Description: Macro commands built from manifest declarations
// Author:      Mike Stoffels
// Created:     2025-03-11
// License:     MIT
// ============================================================================

package loader

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/msto63/dcmd/foundation/command"
	"github.com/msto63/dcmd/foundation/command/tokenize"
	derror "github.com/msto63/dcmd/foundation/core/error"
)

// MaxMacroDepth limits macros dispatching macros
const MaxMacroDepth = 32

type depthKey struct{}

var stepFuncs = template.FuncMap{
	"quote": func(v any) string { return tokenize.Join([]string{fmt.Sprint(v)}) },
	"csv":   csv,
}

func csv(v any) string {
	switch s := v.(type) {
	case []string:
		return strings.Join(s, ",")
	case []int:
		parts := make([]string, len(s))
		for i, n := range s {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

// Macro dispatches its rendered steps through the runtime. The value of the
// last producing step is its result; earlier values are printed.
type Macro struct {
	name  string
	steps []*template.Template
	args  map[string]any
	last  command.Value
}

func (m *Macro) Execute(ctx context.Context, env *command.Env) error {
	if env.Runner == nil {
		return derror.Newf("macro %s has no runner", m.name).WithCode(derror.CodeInternal)
	}

	depth, _ := ctx.Value(depthKey{}).(int)
	if depth >= MaxMacroDepth {
		return derror.Wrapf(ErrMacroDepth, "macro %s", m.name).
			WithCode(derror.CodeExecution).
			WithDetail("depth", depth)
	}
	ctx = context.WithValue(ctx, depthKey{}, depth+1)

	for i, step := range m.steps {
		if err := ctx.Err(); err != nil {
			return derror.Wrapf(err, "macro %s interrupted", m.name).WithCode(derror.CodeExecution)
		}

		var line strings.Builder
		if err := step.Execute(&line, m.args); err != nil {
			return derror.Wrapf(err, "step %d", i+1).
				WithCode(derror.CodeExecution).
				WithDetail("step", i+1)
		}

		res := env.Runner.RunLine(ctx, line.String())
		if !res.OK() {
			return derror.Wrapf(res.Err, "step %d: %s", i+1, line.String()).
				WithCode(derror.CodeExecution).
				WithDetail("step", i+1).
				WithDetail("outcome", res.Outcome.String())
		}
		if res.Value.IsValid() {
			if i < len(m.steps)-1 {
				fmt.Fprintln(env.Out, res.Value.String())
			}
			m.last = res.Value
		}
	}
	return nil
}

func (m *Macro) Result() any {
	if !m.last.IsValid() {
		return nil
	}
	return m.last
}

// Definition compiles the entry into a command definition. It must have
// passed Validate.
func (c *CommandSpec) Definition() (command.Definition, error) {
	steps := make([]*template.Template, len(c.Steps))
	for i, step := range c.Steps {
		tmpl, err := parseStep(c.Name, i, step)
		if err != nil {
			return command.Definition{}, err
		}
		steps[i] = tmpl
	}

	zeros := make(map[string]any, len(c.Params))
	params := make([]command.Param, 0, len(c.Params))
	for _, p := range c.Params {
		param, zero, err := buildParam(p)
		if err != nil {
			return command.Definition{}, err
		}
		zeros[p.Name] = zero
		params = append(params, param)
	}

	name := c.Name
	return command.Definition{
		Name:        name,
		Description: c.Description,
		New: func() command.Command {
			args := make(map[string]any, len(zeros))
			for k, v := range zeros {
				args[k] = v
			}
			return &Macro{name: name, steps: steps, args: args}
		},
		Params: params,
	}, nil
}

func buildParam(p ParamSpec) (command.Param, any, error) {
	switch p.Type {
	case "string":
		return macroParam[string](p), "", nil
	case "int":
		return macroParam[int](p), 0, nil
	case "long":
		return macroParam[int64](p), int64(0), nil
	case "double":
		return macroParam[float64](p), 0.0, nil
	case "bool":
		return macroParam[bool](p), false, nil
	case "string[]":
		return macroParam[[]string](p), []string(nil), nil
	case "int[]":
		return macroParam[[]int](p), []int(nil), nil
	}
	return command.Param{}, nil, fmt.Errorf("%w: %s", ErrUnsupportedType, p.Type)
}

func macroParam[T any](p ParamSpec) command.Param {
	key := p.Name
	set := func(m *Macro, v T) { m.args[key] = v }

	if p.Position > 0 {
		return command.Positional(p.Position, p.Name, p.Description, set)
	}
	var opts []command.Option
	if p.Mandatory {
		opts = append(opts, command.Mandatory())
	}
	if p.Default != "" {
		opts = append(opts, command.Default(p.Default))
	}
	return command.Named(p.Flag, p.Description, set, opts...)
}
