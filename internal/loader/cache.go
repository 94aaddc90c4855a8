package loader

import "sync"

// Cache stores loaded modules by fully-qualified name.
type Cache interface {
	Get(name string) (*Module, bool)
	Put(name string, m *Module)
	Invalidate(name string)
}

// MemoryCache is a Cache backed by a mutex-guarded map.
type MemoryCache struct {
	mu      sync.RWMutex
	modules map[string]*Module
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{modules: make(map[string]*Module)}
}

// Get implements Cache.
func (c *MemoryCache) Get(name string) (*Module, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.modules[name]
	return m, ok
}

// Put implements Cache.
func (c *MemoryCache) Put(name string, m *Module) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modules[name] = m
}

// Invalidate implements Cache.
func (c *MemoryCache) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.modules, name)
}
