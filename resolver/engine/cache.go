package engine

import (
	"strings"
	"sync"
	"time"

	resolver_model "github.com/qc-suite/gatekeeper/resolver/model"
)

// decisionCache keeps recently resolved decisions for the cache TTL. Grant or
// binding mutations invalidate per user through the event bus, which keeps
// administrative changes effective on the next resolution.
type decisionCache struct {
	mu      sync.RWMutex
	entries map[string]resolver_model.DecisionCacheEntry
	size    int
	ttl     time.Duration
}

func newDecisionCache(size int, ttl time.Duration) *decisionCache {
	if size <= 0 {
		size = 1024
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &decisionCache{
		entries: make(map[string]resolver_model.DecisionCacheEntry),
		size:    size,
		ttl:     ttl,
	}
}

func (c *decisionCache) Get(key string) *resolver_model.Decision {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.ExpiresAt) {
		return nil
	}
	decision := entry.Decision
	return &decision
}

func (c *decisionCache) Set(key string, decision resolver_model.Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.size {
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
	c.entries[key] = resolver_model.DecisionCacheEntry{
		Decision:  decision,
		ExpiresAt: time.Now().Add(c.ttl),
	}
}

// InvalidateUser drops every cached decision belonging to one user.
func (c *decisionCache) InvalidateUser(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, userID+":") {
			delete(c.entries, key)
		}
	}
}

// Purge drops every cached decision. Used on catalog-wide mutations.
func (c *decisionCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]resolver_model.DecisionCacheEntry)
}
