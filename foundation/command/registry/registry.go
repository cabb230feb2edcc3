// File: registry.go
// Title: Command Registry
// Description: Thread-safe registry of compiled command declarations,
//              split into a loadable and a console namespace.
// Author: msto63
// Version: v0.1.0
// Created: 2025-03-07
// Modified: 2025-03-09
//
// Change History:
// - 2025-03-07 v0.1.0: Initial implementation
// - 2025-03-09 v0.1.1: Atomic bundle replacement

package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/msto63/dcmd/foundation/command"
	derror "github.com/msto63/dcmd/foundation/core/error"
	dlog "github.com/msto63/dcmd/foundation/core/log"
)

// Namespace selects one of the two command tables
type Namespace int

const (
	Loadable Namespace = iota
	Console
)

func (n Namespace) String() string {
	switch n {
	case Loadable:
		return "loadable"
	case Console:
		return "console"
	default:
		return fmt.Sprintf("Namespace(%d)", int(n))
	}
}

// Options configures a Registry
type Options struct {
	Logger *dlog.Logger
}

// Registry maps lower-cased command names to compiled declarations
type Registry struct {
	tables map[Namespace]map[string]*command.Declarations
	logger *dlog.Logger
	mutex  sync.RWMutex
}

// New creates an empty registry
func New(opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = dlog.GetDefault()
	}
	return &Registry{
		tables: map[Namespace]map[string]*command.Declarations{
			Loadable: make(map[string]*command.Declarations),
			Console:  make(map[string]*command.Declarations),
		},
		logger: opts.Logger.WithField("component", "registry"),
	}
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register compiles def and adds it under name, or under the definition's
// own name when name is empty. A definition that fails to compile is not
// added; the failure is logged and returned.
func (r *Registry) Register(name string, def command.Definition, ns Namespace) error {
	if name != "" {
		def.Name = name
	}
	decl, err := command.Compile(def)
	if err != nil {
		r.logger.LogError(derror.Wrap(err, "command excluded").
			WithDetail("namespace", ns.String()))
		return err
	}
	if err := r.checkNamespace(ns); err != nil {
		return err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	k := key(decl.Name())
	if prev, exists := r.tables[ns][k]; exists {
		r.logger.Warn("Command overridden", dlog.Fields{
			"command":   decl.Name(),
			"previous":  prev.Name(),
			"namespace": ns.String(),
		})
	}
	r.tables[ns][k] = decl

	r.logger.Debug("Command registered", dlog.Fields{
		"command":    decl.Name(),
		"namespace":  ns.String(),
		"paramCount": len(decl.Params()),
	})
	return nil
}

// RegisterAll registers every definition and returns the number added
// together with the failures
func (r *Registry) RegisterAll(defs []command.Definition, ns Namespace) (int, []error) {
	var errs []error
	added := 0
	for _, def := range defs {
		if err := r.Register("", def, ns); err != nil {
			errs = append(errs, err)
			continue
		}
		added++
	}
	return added, errs
}

// Replace swaps the namespace's contents for defs. Definitions that fail to
// compile are logged and left out; the swap itself is atomic.
func (r *Registry) Replace(defs []command.Definition, ns Namespace) (int, []error) {
	if err := r.checkNamespace(ns); err != nil {
		return 0, []error{err}
	}
	table := make(map[string]*command.Declarations, len(defs))
	var errs []error
	for _, def := range defs {
		decl, err := command.Compile(def)
		if err != nil {
			r.logger.LogError(derror.Wrap(err, "command excluded").
				WithDetail("namespace", ns.String()))
			errs = append(errs, err)
			continue
		}
		table[key(decl.Name())] = decl
	}

	r.mutex.Lock()
	r.tables[ns] = table
	r.mutex.Unlock()

	r.logger.Info("Namespace replaced", dlog.Fields{
		"namespace":    ns.String(),
		"commandCount": len(table),
		"excluded":     len(errs),
	})
	return len(table), errs
}

// Lookup finds a command by name, ignoring case
func (r *Registry) Lookup(name string, ns Namespace) (*command.Declarations, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	decl, ok := r.tables[ns][key(name)]
	return decl, ok
}

// Get is Lookup returning a NOT_FOUND error
func (r *Registry) Get(name string, ns Namespace) (*command.Declarations, error) {
	decl, ok := r.Lookup(name, ns)
	if !ok {
		return nil, derror.Newf("command %q doesn't exist", name).
			WithCode(derror.CodeNotFound).
			WithDetail("command", name).
			WithDetail("namespace", ns.String())
	}
	return decl, nil
}

// Has reports whether name is registered in ns
func (r *Registry) Has(name string, ns Namespace) bool {
	_, ok := r.Lookup(name, ns)
	return ok
}

// Commands returns the declarations of ns sorted by name
func (r *Registry) Commands(ns Namespace) []*command.Declarations {
	r.mutex.RLock()
	out := make([]*command.Declarations, 0, len(r.tables[ns]))
	for _, decl := range r.tables[ns] {
		out = append(out, decl)
	}
	r.mutex.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return key(out[i].Name()) < key(out[j].Name())
	})
	return out
}

// Names returns the registered names of ns in sorted order
func (r *Registry) Names(ns Namespace) []string {
	decls := r.Commands(ns)
	names := make([]string, len(decls))
	for i, d := range decls {
		names[i] = d.Name()
	}
	return names
}

// Len returns the number of commands in ns
func (r *Registry) Len(ns Namespace) int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.tables[ns])
}

// Remove deletes a command and reports whether it existed
func (r *Registry) Remove(name string, ns Namespace) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	k := key(name)
	if _, ok := r.tables[ns][k]; !ok {
		return false
	}
	delete(r.tables[ns], k)
	return true
}

func (r *Registry) checkNamespace(ns Namespace) error {
	if ns != Loadable && ns != Console {
		return derror.Newf("unknown namespace %d", int(ns)).WithCode(derror.CodeInvalidInput)
	}
	return nil
}
