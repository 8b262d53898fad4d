package cache

import (
	"math"
	"sync"

	"github.com/couchcryptid/geo-position-etl/internal/domain"
	"github.com/couchcryptid/geo-position-etl/internal/observability"
)

// CachedNormalizer wraps a Normalizer with an in-memory LRU cache keyed by
// the exact bits of the input value.
type CachedNormalizer struct {
	inner   domain.Normalizer
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedNormalizer creates a cache decorator around a normalizer. metrics
// may be nil.
func NewCachedNormalizer(inner domain.Normalizer, maxEntries int, metrics *observability.Metrics) *CachedNormalizer {
	return &CachedNormalizer{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedNormalizer) Normalize(value float64) (float64, error) {
	key := math.Float64bits(value)
	if result, ok := c.cache.get(key); ok {
		c.observe("hit")
		return result, nil
	}
	c.observe("miss")

	result, err := c.inner.Normalize(value)
	if err != nil {
		return result, err
	}
	// Only successes are cached; rejected values keep their full error.
	c.cache.put(key, result)
	return result, nil
}

// Len returns the number of cached entries.
func (c *CachedNormalizer) Len() int {
	return c.cache.size()
}

func (c *CachedNormalizer) observe(result string) {
	if c.metrics == nil {
		return
	}
	c.metrics.NormalizeCache.WithLabelValues(result).Inc()
}

// lruCache is a simple thread-safe LRU cache of normalized values.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[uint64]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   uint64
	value float64
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[uint64]*entry),
	}
}

func (c *lruCache) get(key uint64) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key uint64, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
