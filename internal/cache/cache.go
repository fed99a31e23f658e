// Package cache provides the JSON snapshot cache used for analytics
// dashboards, benchmark payloads, and the submission retention copy.
//
// Values are stored as raw marshaled JSON so a cache hit replays the exact
// bytes that were first served.
package cache

import (
	"encoding/json"
	"sync"
	"time"
)

// Cache is the read/write surface handlers and the aggregator depend on.
type Cache interface {
	Get(key string) (json.RawMessage, bool)
	Put(key string, value json.RawMessage, ttl time.Duration)
	Delete(key string)
}

type item struct {
	value      json.RawMessage
	expiration int64
}

// Memory is an in-process Cache with per-key TTLs and a background sweeper.
type Memory struct {
	mu    sync.RWMutex
	items map[string]item
}

// NewMemory creates a Memory cache and starts its sweeper goroutine. The
// sweeper runs for the life of the process.
func NewMemory() *Memory {
	c := &Memory{items: make(map[string]item)}

	go func() {
		for {
			time.Sleep(time.Minute)
			c.deleteExpired()
		}
	}()

	return c
}

// Get returns the cached bytes for key if present and unexpired.
func (c *Memory) Get(key string) (json.RawMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, found := c.items[key]
	if !found {
		return nil, false
	}
	if time.Now().UnixNano() > it.expiration {
		return nil, false
	}
	return it.value, true
}

// Put stores value under key until ttl elapses.
func (c *Memory) Put(key string, value json.RawMessage, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{
		value:      value,
		expiration: time.Now().Add(ttl).UnixNano(),
	}
}

// Delete removes key from the cache.
func (c *Memory) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

func (c *Memory) deleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixNano()
	for k, v := range c.items {
		if now > v.expiration {
			delete(c.items, k)
		}
	}
}
