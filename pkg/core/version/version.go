// ============================================================================
// dcmd - Declarative Command Dispatcher
// ============================================================================
//
// Package:     version
// Description: Central version management for all components
// Author:      Mike Stoffels
// Created:     2025-03-14
// License:     MIT
// ============================================================================

package version

import "fmt"

// Version constants for all dcmd components
const (
	// Release version
	Platform = "0.1.0"

	// Component versions
	Engine   = "0.1.0"
	Console  = "0.1.0"
	Server   = "0.1.0"
	Manifest = "1.0.0"
)

// Set at build time:
// go build -ldflags "-X github.com/msto63/dcmd/pkg/core/version.Commit=$(git rev-parse --short HEAD)"
var (
	Commit    = "dev"
	BuildDate = "unknown"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "engine":
		return Engine
	case "console":
		return Console
	case "server":
		return Server
	case "manifest":
		return Manifest
	default:
		return Platform
	}
}

// String returns the release line shown by "dcmd version" and the banner
func String() string {
	return fmt.Sprintf("dcmd %s (commit %s, built %s)", Platform, Commit, BuildDate)
}
