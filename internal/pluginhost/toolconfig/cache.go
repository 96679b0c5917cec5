// Package toolconfig caches dynamically generated tool descriptions,
// generalizing mcp-tools/internal/infrastructure/toolconfig.Cache.
package toolconfig

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/pluginhost"
)

// Cache memoizes ToolDescription values keyed by tool name in a bounded LRU.
type Cache struct {
	cache *lru.Cache
}

// New builds a bounded description cache.
func New(size int) (*Cache, error) {
	if size <= 0 {
		size = 256
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cache{cache: c}, nil
}

// Get returns a cached description for name.
func (c *Cache) Get(name string) (pluginhost.ToolDescription, bool) {
	v, ok := c.cache.Get(name)
	if !ok {
		return pluginhost.ToolDescription{}, false
	}
	return v.(pluginhost.ToolDescription), true
}

// Put stores a description for name.
func (c *Cache) Put(name string, desc pluginhost.ToolDescription) {
	c.cache.Add(name, desc)
}

// Invalidate drops a single cached entry.
func (c *Cache) Invalidate(name string) {
	c.cache.Remove(name)
}

// Purge drops every cached entry.
func (c *Cache) Purge() {
	c.cache.Purge()
}
