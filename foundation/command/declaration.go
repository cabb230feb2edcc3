// File: declaration.go
// Title: Parameter Declarations
// Description: Positional, named and dynamic parameter declarations and the
//              compilation of a command Definition into validated lookup
//              tables.
// Author: msto63
// Version: v0.1.0
// Created: 2025-03-04
// Modified: 2025-03-06
//
// Change History:
// - 2025-03-04 v0.1.0: Initial implementation
// - 2025-03-06 v0.1.1: Validate defaults and setter ownership at compile time

package command

import (
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"strings"

	derror "github.com/msto63/dcmd/foundation/core/error"
)

// ParamKind distinguishes the three declaration variants
type ParamKind int

const (
	PositionalParam ParamKind = iota
	NamedParam
	DynamicParam
)

func (k ParamKind) String() string {
	switch k {
	case PositionalParam:
		return "positional"
	case NamedParam:
		return "named"
	case DynamicParam:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Param is one parameter declaration together with its setter. Build it with
// Positional, Named or Dynamic.
type Param struct {
	kind        ParamKind
	position    int
	name        string
	flag        string
	description string
	mandatory   bool
	defaultVal  string
	arity       int
	aritySet    bool

	setter  string
	target  reflect.Type
	nilSet  bool
	accepts func(Command) bool
	assign  func(Command, string) error
	inject  func(Command, Value) error
	checkDf func(string) error
}

// Option customizes a named parameter
type Option func(*Param)

// Mandatory marks a named parameter as required
func Mandatory() Option {
	return func(p *Param) { p.mandatory = true }
}

// Default sets the value used when an optional named parameter is absent.
// An absent flag binds as if "flag value" had been given, with one
// exception: an empty default on a non-string target leaves the zero value,
// where an explicit empty token would fail coercion.
func Default(value string) Option {
	return func(p *Param) { p.defaultVal = value }
}

// Arity overrides the token count of a named parameter: 1 for a boolean
// switch, 2 for flag and value
func Arity(n int) Option {
	return func(p *Param) {
		p.arity = n
		p.aritySet = true
	}
}

// Positional declares the parameter at the 1-based position
func Positional[C Command, T any](position int, name, description string, set func(C, T)) Param {
	p := newParam[C, T](PositionalParam, description, set)
	p.position = position
	p.name = name
	p.mandatory = true
	return p
}

// Named declares a flag parameter. Boolean targets default to arity 1.
// Without a Default an absent optional flag leaves the zero value of T.
func Named[C Command, T any](flag, description string, set func(C, T), opts ...Option) Param {
	p := newParam[C, T](NamedParam, description, set)
	p.flag = flag
	p.arity = 2
	if p.target.Kind() == reflect.Bool {
		p.arity = 1
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Dynamic declares a flag whose following token names an entry in the
// object store. The stored value is assigned unchanged if it is a T.
func Dynamic[C Command, T any](flag, description string, set func(C, T)) Param {
	p := newParam[C, T](DynamicParam, description, set)
	p.flag = flag
	p.arity = 2
	return p
}

func newParam[C Command, T any](kind ParamKind, description string, set func(C, T)) Param {
	p := Param{
		kind:        kind,
		description: description,
		setter:      funcName(set),
		target:      reflect.TypeOf((*T)(nil)).Elem(),
		nilSet:      set == nil,
		accepts: func(c Command) bool {
			_, ok := c.(C)
			return ok
		},
	}
	p.assign = func(c Command, token string) error {
		v, err := Coerce[T](token)
		if err != nil {
			return err
		}
		set(c.(C), v)
		return nil
	}
	p.inject = func(c Command, v Value) error {
		if tv, ok := v.Interface().(T); ok {
			set(c.(C), tv)
			return nil
		}
		if tv, ok := any(v).(T); ok {
			set(c.(C), tv)
			return nil
		}
		return derror.Newf("holds %s, expected %s", v.TypeName(), typeName(p.target)).
			WithCode(derror.CodeBinding)
	}
	p.checkDf = func(s string) error {
		_, err := Coerce[T](s)
		return err
	}
	return p
}

func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.IsNil() {
		return "<nil>"
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return "<unknown>"
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}

func (p *Param) Kind() ParamKind      { return p.kind }
func (p *Param) Position() int        { return p.position }
func (p *Param) Name() string         { return p.name }
func (p *Param) Flag() string         { return p.flag }
func (p *Param) Description() string  { return p.description }
func (p *Param) Mandatory() bool      { return p.mandatory }
func (p *Param) DefaultValue() string { return p.defaultVal }
func (p *Param) Arity() int           { return p.arity }
func (p *Param) Setter() string       { return p.setter }

// TypeName names the setter's parameter type as shown in help output
func (p *Param) TypeName() string { return typeName(p.target) }

// Label is the flag for named and dynamic parameters, the name otherwise
func (p *Param) Label() string {
	if p.kind == PositionalParam {
		return p.name
	}
	return p.flag
}

// Definition describes a command type
type Definition struct {
	Name        string
	Description string
	New         func() Command
	Params      []Param
}

// Declarations is the validated, immutable form of a Definition
type Declarations struct {
	name        string
	description string
	newFn       func() Command

	positional []*Param
	named      map[string]*Param
	dynamic    map[string]*Param
	ordered    []*Param
}

// Compile validates def and builds its lookup tables. Any inconsistency is a
// DECLARATION error naming the command and the offending setter.
func Compile(def Definition) (*Declarations, error) {
	if def.New == nil {
		return nil, declarationError(def.Name, "", "no constructor")
	}
	sample := def.New()
	if sample == nil {
		return nil, declarationError(def.Name, "", "constructor returned nil")
	}

	name := strings.TrimSpace(def.Name)
	if name == "" {
		name = TypeName(sample)
	}
	if strings.ContainsAny(name, " \t\r\n") {
		return nil, declarationError(name, "", "command name contains whitespace")
	}

	d := &Declarations{
		name:        name,
		description: def.Description,
		newFn:       def.New,
		named:       make(map[string]*Param),
		dynamic:     make(map[string]*Param),
	}

	positions := make(map[int]*Param)
	for i := range def.Params {
		p := def.Params[i]
		if p.accepts == nil {
			return nil, declarationError(name, "", fmt.Sprintf("parameter %d was not built by a declaration constructor", i+1))
		}
		if p.nilSet {
			return nil, declarationError(name, p.setter, "setter is nil")
		}
		if !p.accepts(sample) {
			return nil, declarationError(name, p.setter,
				fmt.Sprintf("setter does not accept %T", sample))
		}

		switch p.kind {
		case PositionalParam:
			if p.position < 1 {
				return nil, declarationError(name, p.setter, fmt.Sprintf("position %d is not >= 1", p.position))
			}
			if strings.TrimSpace(p.name) == "" {
				return nil, declarationError(name, p.setter, "positional parameter has no name")
			}
			if prev, dup := positions[p.position]; dup {
				return nil, declarationError(name, p.setter,
					fmt.Sprintf("position %d already used by %s", p.position, prev.setter))
			}
			positions[p.position] = &p

		case NamedParam, DynamicParam:
			if strings.TrimSpace(p.flag) == "" || strings.ContainsAny(p.flag, " \t\r\n") {
				return nil, declarationError(name, p.setter, fmt.Sprintf("invalid flag %q", p.flag))
			}
			if _, dup := d.named[p.flag]; dup {
				return nil, declarationError(name, p.setter, fmt.Sprintf("duplicate flag %s", p.flag))
			}
			if _, dup := d.dynamic[p.flag]; dup {
				return nil, declarationError(name, p.setter, fmt.Sprintf("duplicate flag %s", p.flag))
			}
			if p.kind == DynamicParam {
				d.dynamic[p.flag] = &p
				break
			}
			if p.arity != 1 && p.arity != 2 {
				return nil, declarationError(name, p.setter, fmt.Sprintf("arity %d is not 1 or 2", p.arity))
			}
			if p.arity == 1 && p.target.Kind() != reflect.Bool {
				return nil, declarationError(name, p.setter,
					fmt.Sprintf("switch %s must set a bool, not %s", p.flag, typeName(p.target)))
			}
			if p.defaultVal != "" {
				if err := p.checkDf(p.defaultVal); err != nil {
					return nil, derror.Wrap(err, fmt.Sprintf("command %s: default of %s", name, p.flag)).
						WithCode(derror.CodeDeclaration).
						WithDetail("command", name).
						WithDetail("setter", p.setter)
				}
			}
			d.named[p.flag] = &p
		}
		d.ordered = append(d.ordered, &p)
	}

	for i := 1; i <= len(positions); i++ {
		p, ok := positions[i]
		if !ok {
			return nil, declarationError(name, "",
				fmt.Sprintf("positions must run 1..%d without gaps, %d is missing", len(positions), i))
		}
		d.positional = append(d.positional, p)
	}

	return d, nil
}

// MustCompile is Compile for statically known definitions
func MustCompile(def Definition) *Declarations {
	d, err := Compile(def)
	if err != nil {
		panic(err)
	}
	return d
}

func declarationError(command, setter, reason string) *derror.Error {
	msg := "command " + command + ": " + reason
	if setter != "" {
		msg = "command " + command + ", setter " + setter + ": " + reason
	}
	return derror.New(msg).
		WithCode(derror.CodeDeclaration).
		WithOperation("compile").
		WithDetail("command", command).
		WithDetail("setter", setter)
}

// TypeName returns the simple type name of c, e.g. "Greet" for *pkg.Greet
func TypeName(c any) string {
	t := reflect.TypeOf(c)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}

func (d *Declarations) Name() string        { return d.name }
func (d *Declarations) Description() string { return d.description }

// New creates a fresh command instance
func (d *Declarations) New() Command { return d.newFn() }

// Positional returns the positional parameters ordered by position
func (d *Declarations) Positional() []*Param {
	return append([]*Param(nil), d.positional...)
}

// Flags returns the named and dynamic flags in sorted order
func (d *Declarations) Flags() []string {
	flags := make([]string, 0, len(d.named)+len(d.dynamic))
	for f := range d.named {
		flags = append(flags, f)
	}
	for f := range d.dynamic {
		flags = append(flags, f)
	}
	sort.Strings(flags)
	return flags
}

// Params returns all parameters in declaration order
func (d *Declarations) Params() []*Param {
	return append([]*Param(nil), d.ordered...)
}
