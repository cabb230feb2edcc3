// File: command_test.go
// Title: Declaration, Binding and Lifecycle Tests
// Description: Tests for compile-time validation, the binder algorithm,
//              coercion and the invocation lifecycle.
// Author: msto63
// Version: v0.1.0
// Created: 2025-03-04
// Modified: 2025-03-06

package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derror "github.com/msto63/dcmd/foundation/core/error"
	dlog "github.com/msto63/dcmd/foundation/core/log"
)

type greet struct {
	Base
	name  string
	loud  bool
	times int
	tag   string
	with  any
	ids   []int
}

func (g *greet) SetName(v string) { g.name = v }
func (g *greet) SetLoud(v bool)   { g.loud = v }
func (g *greet) SetTimes(v int)   { g.times = v }
func (g *greet) SetTag(v string)  { g.tag = v }
func (g *greet) SetWith(v any)    { g.with = v }
func (g *greet) SetIDs(v []int)   { g.ids = v }
func (g *greet) SetCount(v int)   { g.times = v }
func (g *greet) Result() any      { return "hello " + g.name }

func (g *greet) Execute(_ context.Context, env *Env) error {
	msg := "hello " + g.name
	if g.loud {
		msg = strings.ToUpper(msg)
	}
	fmt.Fprintln(env.Out, msg)
	return nil
}

type other struct{}

func (o *other) Execute(context.Context, *Env) error { return nil }
func (o *other) SetX(string)                         {}

func newGreet() Command { return &greet{} }

func greetDefinition() Definition {
	return Definition{
		Name:        "greet",
		Description: "Greets someone by name",
		New:         newGreet,
		Params: []Param{
			Positional(1, "name", "Who to greet", (*greet).SetName),
			Named("-loud", "Shout the greeting", (*greet).SetLoud),
		},
	}
}

func helpDefinition() Definition {
	return Definition{
		Name:        "greet",
		Description: "Greets someone by name",
		New:         newGreet,
		Params: []Param{
			Positional(1, "name", "Who to greet", (*greet).SetName),
			Named("-loud", "Shout the greeting", (*greet).SetLoud),
			Named("-times", "Repeat count", (*greet).SetTimes, Default("1")),
			Named("-tag", "Label", (*greet).SetTag, Mandatory()),
			Dynamic("-with", "Variable to mention", (*greet).SetWith),
		},
	}
}

type mapLookup map[string]Value

func (m mapLookup) Lookup(name string) (Value, bool) {
	v, ok := m[name]
	return v, ok
}

func mustBind(t *testing.T, def Definition, tokens []string, objects Lookup) *greet {
	t.Helper()
	d, err := Compile(def)
	require.NoError(t, err)
	cmd, err := d.Bind(tokens, objects)
	require.NoError(t, err)
	return cmd.(*greet)
}

func bindErr(t *testing.T, def Definition, tokens []string, objects Lookup) error {
	t.Helper()
	d, err := Compile(def)
	require.NoError(t, err)
	_, err = d.Bind(tokens, objects)
	require.Error(t, err)
	assert.True(t, derror.HasCode(err, derror.CodeBinding), "want BINDING, got %v", err)
	return err
}

func TestCompile_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		params []Param
		want   string
	}{
		{
			name: "duplicate named flag",
			params: []Param{
				Named("-t", "", (*greet).SetTag),
				Named("-t", "", (*greet).SetName),
			},
			want: "duplicate flag -t",
		},
		{
			name: "named and dynamic share a flag",
			params: []Param{
				Named("-w", "", (*greet).SetTag),
				Dynamic("-w", "", (*greet).SetWith),
			},
			want: "duplicate flag -w",
		},
		{
			name: "gap in positions",
			params: []Param{
				Positional(1, "a", "", (*greet).SetName),
				Positional(3, "b", "", (*greet).SetTag),
			},
			want: "2 is missing",
		},
		{
			name: "repeated position",
			params: []Param{
				Positional(1, "a", "", (*greet).SetName),
				Positional(1, "b", "", (*greet).SetTag),
			},
			want: "position 1 already used",
		},
		{
			name:   "position below one",
			params: []Param{Positional(0, "a", "", (*greet).SetName)},
			want:   "not >= 1",
		},
		{
			name:   "switch on non-bool",
			params: []Param{Named("-n", "", (*greet).SetTimes, Arity(1))},
			want:   "must set a bool",
		},
		{
			name:   "arity out of range",
			params: []Param{Named("-n", "", (*greet).SetTimes, Arity(3))},
			want:   "arity 3",
		},
		{
			name:   "nil setter",
			params: []Param{Named[*greet, string]("-n", "", nil)},
			want:   "setter is nil",
		},
		{
			name:   "blank flag",
			params: []Param{Named("", "", (*greet).SetTag)},
			want:   "invalid flag",
		},
		{
			name:   "setter of another type",
			params: []Param{Named("-x", "", (*other).SetX)},
			want:   "does not accept",
		},
		{
			name:   "default that does not parse",
			params: []Param{Named("-n", "", (*greet).SetTimes, Default("many"))},
			want:   "default of -n",
		},
		{
			name:   "zero value param",
			params: []Param{{}},
			want:   "not built by a declaration constructor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(Definition{Name: "broken", New: newGreet, Params: tt.params})
			require.Error(t, err)
			assert.True(t, derror.HasCode(err, derror.CodeDeclaration))
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "broken")
		})
	}
}

func TestCompile_NamesSetterInError(t *testing.T) {
	_, err := Compile(Definition{Name: "broken", New: newGreet, Params: []Param{
		Named("-t", "", (*greet).SetTag),
		Named("-t", "", (*greet).SetName),
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SetName")
}

func TestCompile_Accepts(t *testing.T) {
	d, err := Compile(Definition{New: newGreet, Params: []Param{
		Positional(2, "b", "", (*greet).SetTag),
		Positional(1, "a", "", (*greet).SetName),
	}})
	require.NoError(t, err)
	assert.Equal(t, "greet", d.Name())

	pos := d.Positional()
	require.Len(t, pos, 2)
	assert.Equal(t, "a", pos[0].Name())
	assert.Equal(t, "b", pos[1].Name())

	_, err = Compile(Definition{Name: "x"})
	assert.True(t, derror.HasCode(err, derror.CodeDeclaration))
}

func TestParam_DefaultArity(t *testing.T) {
	loud := Named("-l", "", (*greet).SetLoud)
	loud2 := Named("-l", "", (*greet).SetLoud, Arity(2))
	times := Named("-t", "", (*greet).SetTimes)
	assert.Equal(t, 1, loud.Arity())
	assert.Equal(t, 2, loud2.Arity())
	assert.Equal(t, 2, times.Arity())
	assert.Contains(t, times.Setter(), "SetTimes")
}

func TestBind_GreetScenario(t *testing.T) {
	g := mustBind(t, greetDefinition(), []string{"Ann"}, nil)
	assert.Equal(t, "Ann", g.name)
	assert.False(t, g.loud)

	g = mustBind(t, greetDefinition(), []string{"Ann", "-loud"}, nil)
	assert.True(t, g.loud)

	err := bindErr(t, greetDefinition(), nil, nil)
	assert.Contains(t, err.Error(), "positional parameters are all mandatory")
}

func TestBind_PositionalCount(t *testing.T) {
	def := Definition{Name: "p", New: newGreet, Params: []Param{
		Positional(1, "a", "", (*greet).SetName),
		Positional(2, "b", "", (*greet).SetTag),
		Positional(3, "c", "", (*greet).SetTimes),
	}}
	for n := 0; n < 3; n++ {
		tokens := []string{"x", "y", "1"}[:n]
		err := bindErr(t, def, tokens, nil)
		assert.Contains(t, err.Error(), "some are missing")
	}

	g := mustBind(t, def, []string{"x", "y", "7"}, nil)
	assert.Equal(t, "x", g.name)
	assert.Equal(t, "y", g.tag)
	assert.Equal(t, 7, g.times)

	// a fourth token is not a flag
	err := bindErr(t, def, []string{"x", "y", "7", "z"}, nil)
	assert.Contains(t, err.Error(), `input parameter "z" is not valid`)
}

func TestBind_DefaultEquivalence(t *testing.T) {
	def := Definition{Name: "d", New: newGreet, Params: []Param{
		Named("-times", "", (*greet).SetTimes, Default("3")),
		Named("-tag", "", (*greet).SetTag, Default("none")),
		Named("-loud", "", (*greet).SetLoud, Default("false")),
	}}

	absent := mustBind(t, def, nil, nil)
	explicit := mustBind(t, def, []string{"-times", "3", "-tag", "none"}, nil)
	assert.Equal(t, explicit.times, absent.times)
	assert.Equal(t, explicit.tag, absent.tag)
	assert.Equal(t, 3, absent.times)
	assert.False(t, absent.loud)
}

func TestBind_EmptyDefaultLeavesZero(t *testing.T) {
	def := Definition{Name: "d", New: newGreet, Params: []Param{
		Named("-times", "", (*greet).SetTimes),
		Named("-ids", "", (*greet).SetIDs),
	}}
	g := mustBind(t, def, nil, nil)
	assert.Equal(t, 0, g.times)
	assert.Nil(t, g.ids)

	def.Params = append(def.Params, Named("-count", "", (*greet).SetCount, Default("")))
	g = mustBind(t, def, nil, nil)
	assert.Equal(t, 0, g.times)

	err := bindErr(t, def, []string{"-count", ""}, nil)
	assert.True(t, derror.HasCode(err, derror.CodeCoercion))
}

func TestBind_MandatoryNamed(t *testing.T) {
	def := Definition{Name: "m", New: newGreet, Params: []Param{
		Named("-tag", "", (*greet).SetTag, Mandatory()),
		Named("-times", "", (*greet).SetTimes, Mandatory()),
	}}
	err := bindErr(t, def, []string{"-tag", "x"}, nil)
	assert.Contains(t, err.Error(), "parameter -times is mandatory")

	g := mustBind(t, def, []string{"-times", "2", "-tag", "x"}, nil)
	assert.Equal(t, 2, g.times)
}

func TestBind_FlagErrors(t *testing.T) {
	def := Definition{Name: "f", New: newGreet, Params: []Param{
		Named("-tag", "", (*greet).SetTag),
		Named("-loud", "", (*greet).SetLoud),
	}}

	err := bindErr(t, def, []string{"-tag"}, nil)
	assert.Contains(t, err.Error(), "wrong number of parameters for -tag")

	err = bindErr(t, def, []string{"-nope"}, nil)
	assert.Contains(t, err.Error(), "is not valid")

	err = bindErr(t, def, []string{"-loud", "-loud"}, nil)
	assert.Contains(t, err.Error(), `input parameter "-loud" is not valid`)

	err = bindErr(t, def, []string{"-tag", "a", "-tag", "b"}, nil)
	assert.Contains(t, err.Error(), `input parameter "-tag" is not valid`)
}

func TestBind_Dynamic(t *testing.T) {
	def := Definition{Name: "dyn", New: newGreet, Params: []Param{
		Dynamic("-with", "", (*greet).SetWith),
		Dynamic("-ids", "", (*greet).SetIDs),
	}}

	err := bindErr(t, def, []string{"-with", "missing"}, mapLookup{})
	assert.Contains(t, err.Error(), `"missing" is not a valid variable`)

	type summary struct{ n int }
	stored := &summary{n: 4}
	objects := mapLookup{
		"s":   ValueOf(stored),
		"ids": ValueOf([]int{1, 2}),
		"str": ValueOf("text"),
	}

	g := mustBind(t, def, []string{"-with", "s", "-ids", "ids"}, objects)
	assert.Same(t, stored, g.with)
	assert.Equal(t, []int{1, 2}, g.ids)

	err = bindErr(t, def, []string{"-ids", "str"}, objects)
	assert.Contains(t, err.Error(), "holds string, expected int[]")

	err = bindErr(t, def, []string{"-with"}, objects)
	assert.Contains(t, err.Error(), "wrong number of parameters for -with")
}

func TestBind_ArrayCoercion(t *testing.T) {
	def := Definition{Name: "a", New: newGreet, Params: []Param{
		Named("-ids", "", (*greet).SetIDs),
	}}

	g := mustBind(t, def, []string{"-ids", "1,2,3"}, nil)
	assert.Equal(t, []int{1, 2, 3}, g.ids)

	err := bindErr(t, def, []string{"-ids", "1,x,3"}, nil)
	assert.True(t, derror.HasCode(err, derror.CodeCoercion))
	assert.Contains(t, err.Error(), "1,x,3")

	var dErr *derror.Error
	require.True(t, errors.As(err, &dErr))
	reason, _ := dErr.Detail("reason")
	assert.Equal(t, "COERCION", reason)
}

func TestBind_ScalarCoercionFailure(t *testing.T) {
	def := Definition{Name: "s", New: newGreet, Params: []Param{
		Positional(1, "count", "", (*greet).SetCount),
	}}
	err := bindErr(t, def, []string{"ten"}, nil)
	assert.True(t, derror.HasCode(err, derror.CodeCoercion))
	assert.Contains(t, err.Error(), "parameter count")
}

func TestCoerce(t *testing.T) {
	i, err := Coerce[int]("42")
	require.NoError(t, err)
	assert.Equal(t, 42, i)

	l, err := Coerce[int64]("9000000000")
	require.NoError(t, err)
	assert.Equal(t, int64(9000000000), l)

	_, err = Coerce[int16]("70000")
	assert.Error(t, err)

	i, err = Coerce[int]("-2147483648")
	require.NoError(t, err)
	assert.Equal(t, -2147483648, i)
	_, err = Coerce[int]("2147483648")
	assert.True(t, derror.HasCode(err, derror.CodeCoercion))
	_, err = Coerce[[]int]("1,9000000000")
	assert.True(t, derror.HasCode(err, derror.CodeCoercion))

	f, err := Coerce[float32]("1.5")
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f)

	d, err := Coerce[float64]("-2.25")
	require.NoError(t, err)
	assert.Equal(t, -2.25, d)

	b, err := Coerce[bool]("true")
	require.NoError(t, err)
	assert.True(t, b)
	_, err = Coerce[bool]("yes")
	assert.Error(t, err)

	c, err := Coerce[rune]("ß")
	require.NoError(t, err)
	assert.Equal(t, 'ß', c)
	_, err = Coerce[rune]("ab")
	assert.True(t, derror.HasCode(err, derror.CodeCoercion))

	s, err := Coerce[[]string]("a, b,c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, s)

	fs, err := Coerce[[]float64]("1.5,2")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2}, fs)

	_, err = Coerce[time.Duration]("1s")
	require.Error(t, err)
	assert.True(t, derror.HasCode(err, derror.CodeCoercion))
	assert.False(t, Coercible[time.Duration]())
	assert.True(t, Coercible[[]int16]())
}

type failing struct {
	Base
	mode string
}

func (f *failing) SetMode(v string) { f.mode = v }

func (f *failing) Execute(ctx context.Context, env *Env) error {
	switch f.mode {
	case "error":
		return errors.New("disk on fire")
	case "panic":
		panic("unexpected nil")
	}
	time.Sleep(time.Millisecond)
	return nil
}

func TestInvoke(t *testing.T) {
	d := MustCompile(Definition{Name: "fail", New: func() Command { return &failing{} }, Params: []Param{
		Positional(1, "mode", "", (*failing).SetMode),
	}})
	var logs bytes.Buffer
	env := &Env{Logger: dlog.NewWithConfig(dlog.Config{Level: dlog.LevelDebug, Output: &logs})}

	res := Invoke(context.Background(), d, []string{"ok"}, env)
	assert.Equal(t, Success, res.Outcome)
	assert.True(t, res.OK())
	assert.Greater(t, res.Elapsed, time.Duration(0))
	assert.False(t, res.Value.IsValid())

	res = Invoke(context.Background(), d, []string{"error"}, env)
	assert.Equal(t, ExecutionError, res.Outcome)
	assert.True(t, derror.HasCode(res.Err, derror.CodeExecution))
	assert.Contains(t, res.Err.Error(), "disk on fire")

	res = Invoke(context.Background(), d, []string{"panic"}, env)
	assert.Equal(t, ExecutionError, res.Outcome)
	assert.Contains(t, res.Err.Error(), "unexpected nil")
	assert.Equal(t, derror.SeverityCritical, derror.GetSeverity(res.Err))
	assert.Contains(t, logs.String(), "command panicked")

	res = Invoke(context.Background(), d, nil, env)
	assert.Equal(t, BindingError, res.Outcome)
	assert.Equal(t, "fail", res.Command)
}

func TestInvoke_ProducerAndOutput(t *testing.T) {
	d := MustCompile(greetDefinition())
	var out bytes.Buffer

	res := Invoke(context.Background(), d, []string{"Ann", "-loud"}, &Env{Out: &out})
	require.True(t, res.OK())
	assert.Equal(t, "HELLO ANN\n", out.String())
	assert.Equal(t, KindString, res.Value.Kind())
	assert.Equal(t, "hello Ann", res.Value.Interface())
}

func TestInvoke_NilEnv(t *testing.T) {
	d := MustCompile(greetDefinition())
	res := Invoke(context.Background(), d, []string{"Bob"}, nil)
	assert.True(t, res.OK())
}

func TestInvoke_LeavesEnvUntouched(t *testing.T) {
	d := MustCompile(greetDefinition())
	env := &Env{Session: "s1"}

	res := Invoke(context.Background(), d, []string{"Bob"}, env)
	require.True(t, res.OK())
	assert.Nil(t, env.Out)
	assert.Nil(t, env.In)
	assert.Equal(t, "s1", env.Session)
}

func TestNotFoundResult(t *testing.T) {
	res := NotFoundResult("ghost")
	assert.Equal(t, NotFound, res.Outcome)
	assert.True(t, derror.HasCode(res.Err, derror.CodeNotFound))
	assert.Equal(t, "not found", res.Outcome.String())
}

func TestValue(t *testing.T) {
	assert.Equal(t, KindIntArray, ValueOf([]int{1}).Kind())
	assert.Equal(t, KindChar, ValueOf('x').Kind())
	assert.Equal(t, "x", ValueOf('x').String())
	assert.Equal(t, "[a, b]", ValueOf([]string{"a", "b"}).String())
	assert.Equal(t, KindObject, ValueOf(struct{}{}).Kind())
	assert.Equal(t, "<nil>", ValueOf(nil).String())

	v := ValueOf(3)
	assert.Equal(t, v, ValueOf(v))
	assert.Equal(t, "int", v.TypeName())
}

func TestHelpGolden(t *testing.T) {
	d := MustCompile(helpDefinition())
	assert.Equal(t, "greet <name> [-loud] [-times <int>] -tag <string> [-with <var>]", d.Usage())

	g := goldie.New(t)
	g.Assert(t, "greet_help", []byte(d.Help()))
}
