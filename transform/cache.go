package transform

import (
	"crypto/sha256"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

// cacheEntry holds one memoized transform result together with the content
// hash it was produced from.
type cacheEntry struct {
	sum    [sha256.Size]byte
	result Result
}

// Cache memoizes transform results per path, keyed by the content hash. A
// result is a pure function of (path, content), so an entry stays valid until
// the file's content changes; a write to one file can never invalidate
// another file's entry.
type Cache struct {
	entries *xsync.Map[string, cacheEntry]
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: xsync.NewMap[string, cacheEntry]()}
}

// Get returns the memoized result for path if one exists for exactly this
// content.
func (c *Cache) Get(path, content string) (Result, bool) {
	if entry, ok := c.entries.Load(path); ok && entry.sum == sha256.Sum256([]byte(content)) {
		c.hits.Add(1)
		return entry.result, true
	}
	c.misses.Add(1)
	return Result{}, false
}

// Put memoizes the result for path at this content.
func (c *Cache) Put(path, content string, result Result) {
	c.entries.Store(path, cacheEntry{sum: sha256.Sum256([]byte(content)), result: result})
}

// Invalidate drops the entry for exactly one path.
func (c *Cache) Invalidate(path string) {
	c.entries.Delete(path)
}

// Len returns the number of memoized entries.
func (c *Cache) Len() int {
	return c.entries.Size()
}

// Hits returns the number of lookups served from memoized results.
func (c *Cache) Hits() uint64 {
	return c.hits.Load()
}

// Misses returns the number of lookups that required a fresh transform.
func (c *Cache) Misses() uint64 {
	return c.misses.Load()
}
