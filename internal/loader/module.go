package loader

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrModuleNotFound is returned when no loader can produce a module.
	ErrModuleNotFound = errors.New("module not found")
	// ErrUnresolvableModulePath is returned when a module has no search path.
	ErrUnresolvableModulePath = errors.New("unable to resolve module path")
)

// LoaderFunc loads the module called name.
type LoaderFunc func(ctx context.Context, name string) (*Module, error)

// Module is a loaded module handle.
type Module struct {
	Name  string
	Path  []string       // package search locations; empty for plain modules
	Attrs map[string]any // names the module defines

	mu   sync.RWMutex
	load LoaderFunc
}

// Attr returns the attribute called name.
func (m *Module) Attr(name string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.Attrs[name]
	return v, ok
}

// SearchPath returns a copy of the module's search locations.
func (m *Module) SearchPath() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.Path...)
}

// refresh copies the loaded state of fresh into m, keeping m's identity.
func (m *Module) refresh(fresh *Module) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Path = fresh.Path
	m.Attrs = fresh.Attrs
}
