// Package cache is a byte cache for computed report payloads, keyed by an
// explicit fingerprint of (dataset version, grouping mode, filter
// parameters). A new dataset version produces a new key, so stale entries
// simply age out; nothing is invalidated in place.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// Cache is a get/set byte store with per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
}

// Fingerprint derives a stable cache key from its parts.
func Fingerprint(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

type entry struct {
	val     []byte
	expires time.Time
}

// Memory is the in-process fallback used when Redis is not configured.
type Memory struct {
	mu sync.RWMutex
	m  map[string]entry
}

func NewMemory() *Memory { return &Memory{m: make(map[string]entry)} }

func (c *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.val, true
}

func (c *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// Drop expired entries opportunistically so the map stays bounded.
	now := time.Now()
	for k, e := range c.m {
		if now.After(e.expires) {
			delete(c.m, k)
		}
	}
	c.m[key] = entry{val: val, expires: now.Add(ttl)}
}
