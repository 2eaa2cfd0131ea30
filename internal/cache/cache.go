// Package cache keeps recently generated artifacts so that identical
// generator calls can be served without running the generator again.
package cache

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/vk/mediagrid/internal/artifact"
)

// Artifacts is an expiring LRU of generated artifacts keyed by generator
// name and parameters. It is safe for concurrent use. Cached artifacts are
// shared between callers and must be treated as read-only.
type Artifacts struct {
	lru    *expirable.LRU[string, *artifact.Artifact]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates a cache holding at most size entries, each living for ttl.
// A ttl of zero or less keeps entries until they are evicted by size.
func New(size int, ttl time.Duration) *Artifacts {
	if size <= 0 {
		size = 1
	}
	return &Artifacts{lru: expirable.NewLRU[string, *artifact.Artifact](size, nil, ttl)}
}

// Key returns the cache key for a generator call. Parameters are encoded as
// JSON, which orders map keys, so equal parameter maps yield equal keys.
func Key(generator string, params map[string]any) (string, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("cache key for %q: %w", generator, err)
	}
	return generator + "\x00" + string(raw), nil
}

// Get returns the cached artifact for key.
func (c *Artifacts) Get(key string) (*artifact.Artifact, bool) {
	a, ok := c.lru.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return a, ok
}

// Add stores a under key.
func (c *Artifacts) Add(key string, a *artifact.Artifact) {
	c.lru.Add(key, a)
}

// Len returns the number of live entries.
func (c *Artifacts) Len() int {
	return c.lru.Len()
}

// Purge drops every entry.
func (c *Artifacts) Purge() {
	c.lru.Purge()
}

// Stats reports lookups served from the cache and lookups that missed.
func (c *Artifacts) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}
