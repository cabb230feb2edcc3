// File: severity.go
// Title: Error Severity Levels
// Description: Severity levels used to pick log levels for errors.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-03-02

package error

// Severity ranks how serious an error is
type Severity int

const (
	// SeverityLow: invalid user input, mistyped command names
	SeverityLow Severity = iota
	// SeverityMedium: an operation failed, the session continues
	SeverityMedium
	// SeverityHigh: a component is misconfigured or was excluded
	SeverityHigh
	// SeverityCritical: the program is in an unexpected state
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// GetSeverityFromCode returns the default severity for a code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeInvalidInput, CodeNotFound, CodeBinding, CodeCoercion:
		return SeverityLow
	case CodeDeclaration, CodeConfig:
		return SeverityHigh
	case CodeInternal:
		return SeverityCritical
	default:
		return SeverityMedium
	}
}
