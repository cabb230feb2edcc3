// File: codes.go
// Title: Error Code Definitions
// Description: Classification codes for dcmd errors.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-03-02

package error

// Code classifies an error
type Code string

const (
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"
	CodeIO           Code = "IO"
	CodeConfig       Code = "CONFIG"

	// Dispatch taxonomy
	CodeDeclaration Code = "DECLARATION"
	CodeBinding     Code = "BINDING"
	CodeCoercion    Code = "COERCION"
	CodeExecution   Code = "EXECUTION"
)

// IsValid reports whether c is one of the defined codes
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeInvalidInput, CodeNotFound, CodeIO, CodeConfig,
		CodeDeclaration, CodeBinding, CodeCoercion, CodeExecution:
		return true
	}
	return false
}

// IsUserError reports whether the code describes bad input rather than a
// broken program or environment
func (c Code) IsUserError() bool {
	switch c {
	case CodeInvalidInput, CodeNotFound, CodeBinding, CodeCoercion:
		return true
	}
	return false
}
