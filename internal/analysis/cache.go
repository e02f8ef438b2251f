package analysis

import "sync"

// ResultCache keeps the most recent Result per source for serving to HTTP
// clients without a database round trip.
type ResultCache struct {
	mu      sync.RWMutex
	results map[string]*Result
}

func NewResultCache() *ResultCache {
	return &ResultCache{results: make(map[string]*Result)}
}

// Put replaces the cached result for the source the result came from.
func (c *ResultCache) Put(r *Result) {
	if r == nil {
		return
	}
	c.mu.Lock()
	c.results[r.SourceName] = r
	c.mu.Unlock()
}

// Get returns the latest result for a source, or nil if none has completed.
func (c *ResultCache) Get(sourceName string) *Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.results[sourceName]
}

// Sources lists the sources that have at least one completed run.
func (c *ResultCache) Sources() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.results))
	for name := range c.results {
		names = append(names, name)
	}
	return names
}
