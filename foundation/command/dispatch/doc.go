// File: doc.go
// Title: Dispatch Runtime Package Documentation
// Description: Documents the runtime that resolves and executes commands.
// Author: msto63
// Version: v0.1.0
// Created: 2025-03-10
// Modified: 2025-03-10
//
// Change History:
// - 2025-03-10 v0.1.0: Initial implementation

/*
Package dispatch provides Runtime, the explicitly constructed session object
that ties a registry, a named-object store, a history and a command loader
together.

A Runtime resolves the first token of a line to a command, binds the rest
and executes it. Commands receive the Runtime as their command.Runner and
may dispatch nested lines at any depth; this is how the console commands
exec and obj are built. The object store and the history each carry their
own lock, so nested dispatch never blocks on the caller's dispatch.

	rt := dispatch.New(dispatch.Options{Logger: logger})
	rt.Registry().RegisterAll(commands.Core(), registry.Loadable)

	res := rt.RunLine(ctx, `obj r "range 1 5"`)
	res = rt.RunLine(ctx, "sum -ids 1,2,3")

Outcomes are reported as command.Result values and never panic or exit.
*/
package dispatch
