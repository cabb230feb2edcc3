// ============================================================================
// dcmd - Declarative Command Dispatcher
// ============================================================================
//
// Package:     loader
// Description: Error definitions for the command loaders
// Author:      Mike Stoffels
// Created:     2025-03-11
// License:     MIT
// ============================================================================

package loader

import "errors"

var (
	// Manifest validation errors
	ErrMissingName     = errors.New("command name is required")
	ErrMissingSteps    = errors.New("command needs at least one step")
	ErrParamKind       = errors.New("parameter needs exactly one of position or flag")
	ErrParamName       = errors.New("parameter name is required")
	ErrDuplicateParam  = errors.New("duplicate parameter name")
	ErrUnsupportedType = errors.New("unsupported parameter type")
	ErrInvalidTemplate = errors.New("invalid step template")

	// Loading errors
	ErrInvalidYAML   = errors.New("invalid YAML syntax")
	ErrNoManifests   = errors.New("no manifest matches the source")
	ErrUnknownBundle = errors.New("unknown command bundle")
	ErrMacroDepth    = errors.New("macro nesting too deep")
)
