package embeddings

import "sync"

// Opener constructs the provider for a model ID.
type Opener func(modelID string) (Provider, error)

// Cache memoizes providers by model ID so each model is constructed once per process.
type Cache struct {
	mu        sync.Mutex
	open      Opener
	providers map[string]Provider
}

// NewCache returns an empty cache that constructs missing providers with open.
func NewCache(open Opener) *Cache {
	return &Cache{open: open, providers: make(map[string]Provider)}
}

// Get returns the cached provider for modelID, constructing it on first use. Failed
// constructions are not cached.
func (c *Cache) Get(modelID string) (Provider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.providers[modelID]; ok {
		return p, nil
	}
	p, err := c.open(modelID)
	if err != nil {
		return nil, err
	}
	c.providers[modelID] = p
	return p, nil
}

// Len returns the number of cached providers.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.providers)
}
