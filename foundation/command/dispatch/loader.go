// File: loader.go
// Title: Command Loader Contract
// Description: The capability that resolves a source locator into command
//              definitions for the loadable namespace.
// Author: msto63
// Version: v0.1.0
// Created: 2025-03-10
// Modified: 2025-03-10

package dispatch

import (
	"context"

	"github.com/msto63/dcmd/foundation/command"
)

// Descriptor is a resolved command ready for registration. Name overrides
// the definition's own name when set.
type Descriptor struct {
	Name       string
	Definition command.Definition
}

// CommandLoader resolves a source, such as a bundle name or a manifest
// path, into command descriptors
type CommandLoader interface {
	LoadCommandTypes(ctx context.Context, source string) ([]Descriptor, error)
}

// LoaderFunc adapts a function to CommandLoader
type LoaderFunc func(ctx context.Context, source string) ([]Descriptor, error)

func (f LoaderFunc) LoadCommandTypes(ctx context.Context, source string) ([]Descriptor, error) {
	return f(ctx, source)
}

func definitions(descs []Descriptor) []command.Definition {
	defs := make([]command.Definition, 0, len(descs))
	for _, d := range descs {
		def := d.Definition
		if d.Name != "" {
			def.Name = d.Name
		}
		defs = append(defs, def)
	}
	return defs
}
