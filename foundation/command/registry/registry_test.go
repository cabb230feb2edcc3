// File: registry_test.go
// Title: Command Registry Unit Tests
// Description: Tests for registration, exclusion of invalid declarations,
//              case-insensitive lookup and bundle replacement.
// Author: msto63
// Version: v0.1.0
// Created: 2025-03-07
// Modified: 2025-03-09

package registry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msto63/dcmd/foundation/command"
	derror "github.com/msto63/dcmd/foundation/core/error"
	dlog "github.com/msto63/dcmd/foundation/core/log"
)

type Ping struct {
	target string
}

func (p *Ping) SetTarget(v string) { p.target = v }

func (p *Ping) Execute(context.Context, *command.Env) error { return nil }

func pingDef(name string) command.Definition {
	return command.Definition{
		Name:        name,
		Description: "Ping a target",
		New:         func() command.Command { return &Ping{} },
		Params: []command.Param{
			command.Positional(1, "target", "Host", (*Ping).SetTarget),
		},
	}
}

func brokenDef(name string) command.Definition {
	return command.Definition{
		Name: name,
		New:  func() command.Command { return &Ping{} },
		Params: []command.Param{
			command.Positional(1, "a", "", (*Ping).SetTarget),
			command.Positional(3, "b", "", (*Ping).SetTarget),
		},
	}
}

func newTestRegistry(buf *bytes.Buffer) *Registry {
	return New(Options{Logger: dlog.NewWithConfig(dlog.Config{Level: dlog.LevelDebug, Output: buf})})
}

func TestRegisterAndLookup(t *testing.T) {
	r := newTestRegistry(&bytes.Buffer{})

	require.NoError(t, r.Register("", pingDef("ping"), Loadable))

	for _, name := range []string{"ping", "PING", "Ping", " ping "} {
		decl, ok := r.Lookup(name, Loadable)
		require.True(t, ok, name)
		assert.Equal(t, "ping", decl.Name())
	}

	_, ok := r.Lookup("ping", Console)
	assert.False(t, ok, "namespaces are independent")

	_, err := r.Get("ghost", Loadable)
	assert.True(t, derror.HasCode(err, derror.CodeNotFound))
}

func TestRegisterAlias(t *testing.T) {
	r := newTestRegistry(&bytes.Buffer{})
	require.NoError(t, r.Register("p", pingDef("ping"), Console))
	assert.True(t, r.Has("P", Console))
	assert.False(t, r.Has("ping", Console))
}

func TestRegisterDerivesTypeName(t *testing.T) {
	r := newTestRegistry(&bytes.Buffer{})
	require.NoError(t, r.Register("", pingDef(""), Loadable))
	assert.Equal(t, []string{"Ping"}, r.Names(Loadable))
	assert.True(t, r.Has("ping", Loadable))
}

func TestRegisterExcludesInvalid(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRegistry(&logs)

	err := r.Register("", brokenDef("gap"), Loadable)
	require.Error(t, err)
	assert.True(t, derror.HasCode(err, derror.CodeDeclaration))
	assert.False(t, r.Has("gap", Loadable))
	assert.Contains(t, logs.String(), "command excluded")
}

func TestRegisterAllContinuesPastFailures(t *testing.T) {
	r := newTestRegistry(&bytes.Buffer{})

	added, errs := r.RegisterAll([]command.Definition{
		pingDef("a"), brokenDef("b"), pingDef("c"),
	}, Loadable)

	assert.Equal(t, 2, added)
	assert.Len(t, errs, 1)
	assert.Equal(t, []string{"a", "c"}, r.Names(Loadable))
}

func TestReplace(t *testing.T) {
	r := newTestRegistry(&bytes.Buffer{})
	r.RegisterAll([]command.Definition{pingDef("old1"), pingDef("old2")}, Loadable)
	require.NoError(t, r.Register("", pingDef("help"), Console))

	n, errs := r.Replace([]command.Definition{pingDef("new"), brokenDef("bad")}, Loadable)
	assert.Equal(t, 1, n)
	assert.Len(t, errs, 1)
	assert.Equal(t, []string{"new"}, r.Names(Loadable))
	assert.Equal(t, 1, r.Len(Console), "console namespace untouched")
}

func TestOverrideAndRemove(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRegistry(&logs)

	require.NoError(t, r.Register("", pingDef("dup"), Loadable))
	require.NoError(t, r.Register("", pingDef("DUP"), Loadable))
	assert.Contains(t, logs.String(), "Command overridden")
	assert.Equal(t, 1, r.Len(Loadable))

	assert.True(t, r.Remove("dup", Loadable))
	assert.False(t, r.Remove("dup", Loadable))
	assert.Equal(t, 0, r.Len(Loadable))
}

func TestUnknownNamespace(t *testing.T) {
	r := newTestRegistry(&bytes.Buffer{})
	err := r.Register("", pingDef("x"), Namespace(7))
	assert.True(t, derror.HasCode(err, derror.CodeInvalidInput))
	assert.Equal(t, "Namespace(7)", Namespace(7).String())
}
