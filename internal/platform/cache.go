package platform

// HandleCache resolves and caches loaded-library handles by plugin
// name, so the same binary is opened at most once per process.
type HandleCache struct {
	handles map[string]Handle
}

// NewHandleCache creates an empty cache.
func NewHandleCache() *HandleCache {
	return &HandleCache{handles: make(map[string]Handle)}
}

// Get returns the cached handle for pluginName, opening path if this is
// the first request for this plugin.
func (c *HandleCache) Get(pluginName, path string) (Handle, error) {
	if h, ok := c.handles[pluginName]; ok {
		return h, nil
	}
	h, err := OpenLibrary(path)
	if err != nil {
		return 0, err
	}
	c.handles[pluginName] = h
	return h, nil
}

// CloseAll releases every cached handle.
func (c *HandleCache) CloseAll() {
	for name, h := range c.handles {
		CloseLibrary(h)
		delete(c.handles, name)
	}
}
