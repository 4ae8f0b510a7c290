package imaging

import "sync"

// Cache memoizes resolved handles by locator for the lifetime of a process.
//
// A single command may name the same locator several times (for example a
// template repeated in a match), and each one should only be fetched and
// decoded once. Cache is safe for concurrent use; ResolveAll fills it from
// several goroutines.
//
// Cached handles are shared, so callers must treat their pixels as read-only.
type Cache struct {
	mu      sync.RWMutex
	handles map[string]*Handle
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{handles: make(map[string]*Handle)}
}

// Load returns the cached handle for locator, calling load on a miss.
//
// Failed loads are not cached. Two goroutines missing on the same locator may
// both call load; the last result wins, which is harmless because decoding is
// deterministic.
func (c *Cache) Load(locator string, load func() (*Handle, error)) (*Handle, error) {
	c.mu.RLock()
	if h, ok := c.handles[locator]; ok {
		c.mu.RUnlock()
		return h, nil
	}
	c.mu.RUnlock()

	h, err := load()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.handles[locator] = h
	c.mu.Unlock()

	return h, nil
}

// Len reports the number of cached handles.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handles)
}

// Clear drops every cached handle.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.handles = make(map[string]*Handle)
	c.mu.Unlock()
}
