package loader

import (
	"context"
	"fmt"
	"path/filepath"
)

// Loader imports modules through a Registry and caches them.
type Loader struct {
	registry *Registry
	cache    Cache
}

// Option configures a Loader.
type Option func(*Loader)

// WithCache replaces the default MemoryCache.
func WithCache(c Cache) Option {
	return func(l *Loader) { l.cache = c }
}

// New returns a Loader backed by registry.
func New(registry *Registry, opts ...Option) *Loader {
	l := &Loader{registry: registry}
	for _, opt := range opts {
		opt(l)
	}
	if l.cache == nil {
		l.cache = NewMemoryCache()
	}
	return l
}

// Registry returns the loader's registry.
func (l *Loader) Registry() *Registry { return l.registry }

// Import returns the cached module called name, loading and caching it first
// if needed.
func (l *Loader) Import(ctx context.Context, name string) (*Module, error) {
	if m, ok := l.cache.Get(name); ok {
		return m, nil
	}

	fn, ok := l.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}

	m, err := fn(ctx, name)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}
	if m.Name == "" {
		m.Name = name
	}
	m.load = fn
	l.cache.Put(name, m)
	return m, nil
}

// Reload re-executes the loader of a cached module and refreshes the cached
// handle in place. A module that is not cached is imported instead. Loader
// errors are returned unmodified.
func (l *Loader) Reload(ctx context.Context, name string) (*Module, error) {
	m, ok := l.cache.Get(name)
	if !ok {
		return l.Import(ctx, name)
	}

	fn := m.load
	if fn == nil {
		// Put into the cache directly rather than imported.
		if fn, ok = l.registry.Lookup(name); !ok {
			return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
		}
		m.load = fn
	}

	fresh, err := fn(ctx, name)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}
	m.refresh(fresh)
	return m, nil
}

// ModulePath returns the first search location of module name, importing it
// if needed.
func (l *Loader) ModulePath(ctx context.Context, name string) (string, error) {
	m, err := l.Import(ctx, name)
	if err != nil {
		return "", err
	}
	path := m.SearchPath()
	if len(path) == 0 {
		return "", fmt.Errorf("%w: %s", ErrUnresolvableModulePath, name)
	}
	return path[0], nil
}

// SitePackages returns the site-packages directory, the parent of pip's
// package directory.
func (l *Loader) SitePackages(ctx context.Context) (string, error) {
	pipDir, err := l.ModulePath(ctx, "pip")
	if err != nil {
		return "", err
	}
	return filepath.Dir(pipDir), nil
}
