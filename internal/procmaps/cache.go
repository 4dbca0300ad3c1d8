package procmaps

import (
	"sync"

	"github.com/mrzor/microdump/internal/moduleid"
)

// IDCache remembers module identifiers per file path so a library mapped by
// many processes, or several times, is only read once.
type IDCache struct {
	mu     sync.RWMutex
	ids    map[string]moduleid.ID // path -> identifier
	errors map[string]error       // path -> identification error
}

// NewIDCache creates an empty cache.
func NewIDCache() *IDCache {
	return &IDCache{
		ids:    make(map[string]moduleid.ID),
		errors: make(map[string]error),
	}
}

// Get returns the identifier cached for path.
func (c *IDCache) Get(path string) (moduleid.ID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.ids[path]
	return id, ok
}

// GetError returns the identification error cached for path, if any.
func (c *IDCache) GetError(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errors[path]
}

// Set stores the identifier for path, clearing any cached error.
func (c *IDCache) Set(path string, id moduleid.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[path] = id
	delete(c.errors, path)
}

// SetError records that path could not be identified.
func (c *IDCache) SetError(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors[path] = err
	delete(c.ids, path)
}

// Delete forgets everything about path.
func (c *IDCache) Delete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ids, path)
	delete(c.errors, path)
}

// Len returns the number of paths with a cached identifier.
func (c *IDCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ids)
}

// GetOrCompute returns the cached identifier or error for path, calling
// compute and caching its result on a miss.
func (c *IDCache) GetOrCompute(path string, compute func(string) (moduleid.ID, error)) (moduleid.ID, error) {
	c.mu.RLock()
	id, ok := c.ids[path]
	err := c.errors[path]
	c.mu.RUnlock()
	if ok {
		return id, nil
	}
	if err != nil {
		return moduleid.ID{}, err
	}

	id, err = compute(path)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.errors[path] = err
		return moduleid.ID{}, err
	}
	c.ids[path] = id
	return id, nil
}
