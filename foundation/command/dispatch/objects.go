// File: objects.go
// Title: Named-Object Store
// Description: Session-scoped map from variable names to produced values.
// Author: msto63
// Version: v0.1.0
// Created: 2025-03-10
// Modified: 2025-03-10

package dispatch

import (
	"sort"
	"strings"
	"sync"

	"github.com/msto63/dcmd/foundation/command"
	dlog "github.com/msto63/dcmd/foundation/core/log"
)

// ObjectStore is additive: entries are only replaced, never evicted
type ObjectStore struct {
	objects map[string]command.Value
	logger  *dlog.Logger
	mutex   sync.RWMutex
}

// NewObjectStore creates an empty store
func NewObjectStore(logger *dlog.Logger) *ObjectStore {
	if logger == nil {
		logger = dlog.Discard()
	}
	return &ObjectStore{
		objects: make(map[string]command.Value),
		logger:  logger.WithField("component", "objects"),
	}
}

// Lookup returns the value stored under name. A leading "$" is ignored so
// that variables can be written the shell way.
func (s *ObjectStore) Lookup(name string) (command.Value, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if v, ok := s.objects[name]; ok {
		return v, true
	}
	v, ok := s.objects[strings.TrimPrefix(name, "$")]
	return v, ok
}

// Put stores v under name, warning when an existing entry is replaced
func (s *ObjectStore) Put(name string, v command.Value) {
	name = strings.TrimPrefix(name, "$")

	s.mutex.Lock()
	_, exists := s.objects[name]
	s.objects[name] = v
	s.mutex.Unlock()

	if exists {
		s.logger.Warn("Overriding an existing object", dlog.Fields{"variable": name})
		return
	}
	s.logger.Debug("Object stored", dlog.Fields{"variable": name, "type": v.TypeName()})
}

// Delete removes name and reports whether it existed
func (s *ObjectStore) Delete(name string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	name = strings.TrimPrefix(name, "$")
	if _, ok := s.objects[name]; !ok {
		return false
	}
	delete(s.objects, name)
	return true
}

// Names returns the variable names in sorted order
func (s *ObjectStore) Names() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	names := make([]string, 0, len(s.objects))
	for name := range s.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored values
func (s *ObjectStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.objects)
}
