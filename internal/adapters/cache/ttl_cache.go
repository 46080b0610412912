// Package cache provides a bounded TTL cache for analytics results.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/poll/analytics/internal/core/ports"
)

type ttlCache struct {
	lru *expirable.LRU[string, any]
}

// NewTTLCache builds an LRU of at most size entries whose values expire
// after ttl.
func NewTTLCache(size int, ttl time.Duration) ports.ResultCache {
	return &ttlCache{lru: expirable.NewLRU[string, any](size, nil, ttl)}
}

func (c *ttlCache) Get(key string) (any, bool) {
	return c.lru.Get(key)
}

func (c *ttlCache) Set(key string, value any) {
	c.lru.Add(key, value)
}

func (c *ttlCache) Remove(key string) {
	c.lru.Remove(key)
}

func (c *ttlCache) Keys() []string {
	return c.lru.Keys()
}
