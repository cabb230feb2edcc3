// File: doc.go
// Title: Declarative Command Package Documentation
// Description: Documents parameter declarations, binding, coercion and the
//              command lifecycle.
// Author: msto63
// Version: v0.1.0
// Created: 2025-03-04
// Modified: 2025-03-04
//
// Change History:
// - 2025-03-04 v0.1.0: Initial implementation

/*
Package command turns argument token streams into typed method calls.

A command is any type implementing Command. Its parameters are declared once,
in a Definition, with the generic constructors Positional, Named and Dynamic.
Each declaration carries the setter that assigns the parameter, so the
parameter's Go type is known statically and coercion needs no reflection at
bind time:

	command.Definition{
		Name:        "greet",
		Description: "Greets someone",
		New:         func() command.Command { return &Greet{} },
		Params: []command.Param{
			command.Positional(1, "name", "Who to greet", (*Greet).SetName),
			command.Named("-loud", "Shout", (*Greet).SetLoud),
			command.Named("-times", "Repeat count", (*Greet).SetTimes, command.Default("1")),
		},
	}

Compile validates a Definition and produces Declarations. Declarations.Bind
consumes tokens in a fixed order: all positional parameters first, then
named and dynamic flags in any order, then defaults for every named flag that
was not supplied. Dynamic parameters take their value from an object store
instead of parsing it.

Invoke wraps binding, execution and timing and reports one of four outcomes:
Success, BindingError, ExecutionError or NotFound. Failures are structured
errors from foundation/core/error carrying the codes DECLARATION, BINDING
(COERCION for unparseable values), EXECUTION and NOT_FOUND.
*/
package command
