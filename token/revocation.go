package token

import (
	"context"
	"sync"
	"time"
)

// RevokedTokenCache remembers revoked token ids until the tokens would have expired anyway
type RevokedTokenCache interface {
	Add(jti string, exp time.Time) error
	IsRevoked(jti string) bool
	Cleanup() // Remove expired entries
}

// InMemoryRevokedTokenCache is a simple in-memory implementation
type InMemoryRevokedTokenCache struct {
	revoked map[string]time.Time
	mu      sync.RWMutex
	nowFunc func() time.Time
}

func NewInMemoryRevokedTokenCache() *InMemoryRevokedTokenCache {
	return &InMemoryRevokedTokenCache{
		revoked: make(map[string]time.Time),
		nowFunc: time.Now,
	}
}

// WithClock replaces the cache's time source.
func (c *InMemoryRevokedTokenCache) WithClock(now func() time.Time) *InMemoryRevokedTokenCache {
	c.nowFunc = now
	return c
}

func (c *InMemoryRevokedTokenCache) Add(jti string, exp time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[jti] = exp
	return nil
}

func (c *InMemoryRevokedTokenCache) IsRevoked(jti string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.revoked[jti]
	return exists
}

func (c *InMemoryRevokedTokenCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.revoked)
}

func (c *InMemoryRevokedTokenCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.nowFunc()
	for jti, exp := range c.revoked {
		if now.After(exp) {
			delete(c.revoked, jti)
		}
	}
}

// RunCleanup calls cache.Cleanup every interval until ctx is done.
func RunCleanup(ctx context.Context, cache RevokedTokenCache, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cache.Cleanup()
		}
	}
}
