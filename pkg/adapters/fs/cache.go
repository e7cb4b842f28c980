package fs

import (
	"sync"
	"time"

	"github.com/aretw0/seoagent/pkg/core"
)

// cacheEntry is a decoded record together with the file stat it was read from.
type cacheEntry struct {
	Article      core.Article
	LastModified time.Time
	Size         int64
}

// cache keeps decoded records keyed by file name so unchanged files are not
// parsed again on every scan. The directory itself is still enumerated each time.
type cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	enabled bool
}

func newCache(enabled bool) *cache {
	return &cache{
		entries: make(map[string]*cacheEntry),
		enabled: enabled,
	}
}

// Get retrieves an entry if it exists and is fresh.
// Returns a private copy of the article and true on a hit; a stale or missing entry is a miss.
func (c *cache) Get(name string, mtime time.Time, size int64) (core.Article, bool) {
	if !c.enabled {
		return core.Article{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[name]
	if !ok || !entry.LastModified.Equal(mtime) || entry.Size != size {
		return core.Article{}, false
	}
	return entry.Article.Clone(), true
}

// Set updates an entry in the cache. The cache keeps its own copy of a.
func (c *cache) Set(name string, a core.Article, mtime time.Time, size int64) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[name] = &cacheEntry{Article: a.Clone(), LastModified: mtime, Size: size}
}

// Prune removes entries that are not in the 'keep' set.
func (c *cache) Prune(keep map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name := range c.entries {
		if !keep[name] {
			delete(c.entries, name)
		}
	}
}

// Delete removes a single entry from the cache.
func (c *cache) Delete(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, name)
}

// Len returns the number of entries in the cache.
func (c *cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
