// File: doc.go
// Title: Structured Error Package Documentation
// Description: Documents the structured error type used across dcmd.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors
// - 2025-03-02 v0.2.0: Dispatch taxonomy codes, errors.As aware helpers

/*
Package error provides a structured error type carrying a classification
code, a severity, free-form details and an optional cause.

The dispatch engine classifies every failure with one of four codes:

  - CodeDeclaration: a command's parameter declarations are inconsistent
  - CodeBinding:     supplied tokens do not satisfy the declarations
  - CodeExecution:   the command failed after successful binding
  - CodeNotFound:    no command is registered under the requested name

Coercion failures are binding failures; they carry CodeCoercion and are
reported by the dispatcher as binding outcomes.

The package is conventionally imported as derror:

	err := derror.New("parameter -t is mandatory").
		WithCode(derror.CodeBinding).
		WithDetail("flag", "-t")

	if derror.HasCode(err, derror.CodeBinding) { ... }
*/
package error
