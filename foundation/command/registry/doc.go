// File: doc.go
// Title: Command Registry Package Documentation
// Description: Documents the two-namespace command registry.
// Author: msto63
// Version: v0.1.0
// Created: 2025-03-07
// Modified: 2025-03-07
//
// Change History:
// - 2025-03-07 v0.1.0: Initial registry implementation

/*
Package registry holds compiled command declarations in two independent
namespaces:

  - Loadable: commands supplied by a bundle; the whole namespace can be
    replaced at runtime by loading a different bundle
  - Console: fixed meta-commands such as help, hist and exec

Names are matched case-insensitively. Every definition is compiled before
insertion; a definition that fails to compile is logged and left out, and
bulk registration carries on with the remaining definitions.
*/
package registry
