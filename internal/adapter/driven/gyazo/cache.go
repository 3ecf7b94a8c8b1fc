package gyazo

import (
	"container/list"
	"sync"

	"github.com/gregjones/httpcache"
)

// Compile-time interface satisfaction check.
var _ httpcache.Cache = (*boundedCache)(nil)

// boundedCache is an LRU httpcache.Cache holding at most maxBytes of stored
// responses. Entries larger than maxBytes are not stored.
type boundedCache struct {
	mu       sync.Mutex
	maxBytes int64
	size     int64
	order    *list.List // front = most recently used
	entries  map[string]*list.Element
}

type cacheEntry struct {
	key   string
	value []byte
}

func newBoundedCache(maxBytes int64) *boundedCache {
	return &boundedCache{
		maxBytes: maxBytes,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

func (c *boundedCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).value, true
}

func (c *boundedCache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if int64(len(value)) > c.maxBytes {
		c.removeLocked(key)
		return
	}

	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*cacheEntry)
		c.size += int64(len(value)) - int64(len(entry.value))
		entry.value = value
		c.order.MoveToFront(el)
	} else {
		c.entries[key] = c.order.PushFront(&cacheEntry{key: key, value: value})
		c.size += int64(len(value))
	}

	for c.size > c.maxBytes {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest.Value.(*cacheEntry).key)
	}
}

func (c *boundedCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(key)
}

func (c *boundedCache) removeLocked(key string) {
	el, ok := c.entries[key]
	if !ok {
		return
	}
	c.order.Remove(el)
	delete(c.entries, key)
	c.size -= int64(len(el.Value.(*cacheEntry).value))
}
