package render

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/diogo/zaril/internal/models"
)

// DefaultCacheSize is the number of rendered messages kept by default
const DefaultCacheSize = 256

type cacheKey struct {
	role    models.Role
	content string
	opts    Options
}

// Cache memoizes rendered messages. Only complete messages are stored; the
// streaming tail changes on every fragment and is always rendered fresh.
type Cache struct {
	entries *lru.Cache[cacheKey, string]
}

// NewCache creates a Cache holding up to size messages
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[cacheKey, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create render cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// Message renders m, consulting the cache when final is true
func (c *Cache) Message(m models.Message, opts Options, final bool) (string, error) {
	opts = opts.normalized()
	if !final {
		return Message(m, opts)
	}

	key := cacheKey{role: m.Role, content: m.Content, opts: opts}
	if out, ok := c.entries.Get(key); ok {
		return out, nil
	}

	out, err := Message(m, opts)
	if err != nil {
		// the fallback output is usable but not worth keeping
		return out, err
	}
	c.entries.Add(key, out)
	return out, nil
}

// Len returns the number of cached messages
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Purge empties the cache
func (c *Cache) Purge() {
	c.entries.Purge()
}
