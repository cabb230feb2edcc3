// File: binder.go
// Title: Parameter Binder
// Description: Consumes an argument token sequence against a command's
//              declarations and produces a populated command instance.
// Author: msto63
// Version: v0.1.0
// Created: 2025-03-04
// Modified: 2025-03-06

package command

import (
	"fmt"
	"reflect"

	derror "github.com/msto63/dcmd/foundation/core/error"
)

// Bind creates a fresh instance and populates it from tokens.
//
// Positional parameters consume the leading tokens in order. The remaining
// tokens must each be a pending named or dynamic flag; a flag is no longer
// pending once matched, so supplying it twice fails. Named parameters not
// supplied get their default, or fail if mandatory.
func (d *Declarations) Bind(tokens []string, objects Lookup) (Command, error) {
	if objects == nil {
		objects = emptyLookup{}
	}
	cmd := d.newFn()

	if len(tokens) < len(d.positional) {
		return nil, d.bindingError(
			"positional parameters are all mandatory, some are missing",
			"expected", len(d.positional), "got", len(tokens))
	}
	for i, p := range d.positional {
		if err := p.assign(cmd, tokens[i]); err != nil {
			return nil, d.wrapBinding(err, p.name)
		}
	}

	pendingNamed := make(map[string]*Param, len(d.named))
	for f, p := range d.named {
		pendingNamed[f] = p
	}
	pendingDynamic := make(map[string]*Param, len(d.dynamic))
	for f, p := range d.dynamic {
		pendingDynamic[f] = p
	}

	rest := tokens[len(d.positional):]
	for i := 0; i < len(rest); {
		token := rest[i]

		if p, ok := pendingNamed[token]; ok {
			delete(pendingNamed, token)
			if p.arity == 1 {
				if err := p.assign(cmd, "true"); err != nil {
					return nil, d.wrapBinding(err, p.flag)
				}
				i++
				continue
			}
			if i+1 >= len(rest) {
				return nil, d.bindingError("wrong number of parameters for "+p.flag, "flag", p.flag)
			}
			if err := p.assign(cmd, rest[i+1]); err != nil {
				return nil, d.wrapBinding(err, p.flag)
			}
			i += 2
			continue
		}

		if p, ok := pendingDynamic[token]; ok {
			delete(pendingDynamic, token)
			if i+1 >= len(rest) {
				return nil, d.bindingError("wrong number of parameters for "+p.flag, "flag", p.flag)
			}
			key := rest[i+1]
			v, found := objects.Lookup(key)
			if !found {
				return nil, d.bindingError(fmt.Sprintf("%q is not a valid variable", key),
					"flag", p.flag, "variable", key)
			}
			if err := p.inject(cmd, v); err != nil {
				return nil, d.wrapBinding(err, fmt.Sprintf("%s (variable %q)", p.flag, key))
			}
			i += 2
			continue
		}

		return nil, d.bindingError(fmt.Sprintf("input parameter %q is not valid", token), "token", token)
	}

	for _, p := range d.ordered {
		if p.kind != NamedParam {
			continue
		}
		if _, missing := pendingNamed[p.flag]; !missing {
			continue
		}
		if p.mandatory {
			return nil, d.bindingError("parameter "+p.flag+" is mandatory", "flag", p.flag)
		}
		if err := d.applyDefault(cmd, p); err != nil {
			return nil, d.wrapBinding(err, p.flag)
		}
	}

	return cmd, nil
}

// applyDefault assigns the declared default. An empty default leaves the
// zero value in place, except for strings which get "" explicitly.
func (d *Declarations) applyDefault(cmd Command, p *Param) error {
	if p.defaultVal == "" {
		if p.target.Kind() == reflect.String {
			return p.assign(cmd, "")
		}
		return nil
	}
	return p.assign(cmd, p.defaultVal)
}

func (d *Declarations) bindingError(msg string, kv ...any) *derror.Error {
	err := derror.New(msg).
		WithCode(derror.CodeBinding).
		WithOperation("bind").
		WithDetail("command", d.name)
	for i := 0; i+1 < len(kv); i += 2 {
		err = err.WithDetail(fmt.Sprint(kv[i]), kv[i+1])
	}
	return err
}

func (d *Declarations) wrapBinding(err error, param string) *derror.Error {
	return derror.Wrap(err, "parameter "+param).
		WithCode(derror.CodeBinding).
		WithOperation("bind").
		WithDetail("command", d.name).
		WithDetail("param", param).
		WithDetail("reason", string(derror.GetCode(err)))
}
