package loader

import "sync"

// Registry maps module names to loaders.
type Registry struct {
	mu       sync.RWMutex
	loaders  map[string]LoaderFunc
	fallback LoaderFunc
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]LoaderFunc)}
}

// Register sets the loader for name, replacing any previous one.
func (r *Registry) Register(name string, fn LoaderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[name] = fn
}

// SetFallback sets the loader used for names nobody registered.
func (r *Registry) SetFallback(fn LoaderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = fn
}

// Lookup returns the loader for name, falling back to the fallback finder.
func (r *Registry) Lookup(name string) (LoaderFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if fn, ok := r.loaders[name]; ok {
		return fn, true
	}
	if r.fallback != nil {
		return r.fallback, true
	}
	return nil, false
}
