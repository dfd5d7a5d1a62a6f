// Package dedup implements a bounded, time-aware set of keys already notified.
//
// Entries are kept in insertion order. Capacity pressure evicts the earliest inserted
// entry, and expired entries are dropped lazily on every Contains call. There is no
// background sweep and entries are never refreshed in place.
package dedup

import (
	"container/list"
	"sync"
	"time"
)

// Cache is a bounded set of dedup keys with first-seen timestamps
type Cache struct {
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	order   *list.List // of *entry, oldest in front
	entries map[string]*list.Element
}

type entry struct {
	key       string
	firstSeen time.Time
}

// Option configures Cache
type Option func(*Cache)

// WithClock sets the time source, used by tests to simulate expiry
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New makes a cache holding at most maxSize keys, each for at most ttl.
// maxSize below 1 is treated as 1.
func New(maxSize int, ttl time.Duration, opts ...Option) *Cache {
	if maxSize < 1 {
		maxSize = 1
	}
	c := &Cache{
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		order:   list.New(),
		entries: make(map[string]*list.Element, maxSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Contains drops expired entries and reports whether key is resident
func (c *Cache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanup()
	_, ok := c.entries[key]
	return ok
}

// MarkSent records key with the current time, evicting the oldest entry if the cache is full
func (c *Cache) MarkSent(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// callers check Contains first, a resident key here means the caller skipped it
	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}

	for c.order.Len() >= c.maxSize {
		c.removeOldest()
	}

	el := c.order.PushBack(&entry{key: key, firstSeen: c.now()})
	c.entries[key] = el
}

// Len returns the number of resident entries, expired ones included until the next lookup
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Cap returns the maximum number of entries
func (c *Cache) Cap() int {
	return c.maxSize
}

// cleanup removes expired entries. Insertion order is first-seen order, so it stops
// at the first live entry.
func (c *Cache) cleanup() {
	now := c.now()
	for {
		el := c.order.Front()
		if el == nil {
			return
		}
		e := el.Value.(*entry)
		if now.Sub(e.firstSeen) < c.ttl {
			return
		}
		c.order.Remove(el)
		delete(c.entries, e.key)
	}
}

func (c *Cache) removeOldest() {
	el := c.order.Front()
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.entries, el.Value.(*entry).key)
}
