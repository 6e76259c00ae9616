// Package cache memoizes computed dashboard payloads for a short TTL to absorb
// repeated polling. Entries expire lazily on lookup and are never mutated
// after being stored; a recompute overwrites the entry wholesale.
package cache

import (
	"sync"
	"time"

	"findash/internal/models"
	"findash/internal/services/telemetry"
)

// DefaultTTL is how long a payload is served before being recomputed
const DefaultTTL = 5 * time.Minute

// Key identifies a cached payload
type Key struct {
	UserID   string
	RangeKey string
	Mode     models.DeltaMode
}

// NewKey builds a key from a resolved range
func NewKey(userID string, r models.Range, mode models.DeltaMode) Key {
	return Key{UserID: userID, RangeKey: r.Key(), Mode: mode}
}

type entry struct {
	payload   *models.Payload
	expiresAt time.Time
}

// Config holds cache configuration
type Config struct {
	TTL     time.Duration
	Now     func() time.Time
	Metrics telemetry.Collector
}

// ResultCache owns the payload map and its TTL policy. There is no in-flight
// de-duplication: concurrent misses for one key each recompute and the last
// store wins.
type ResultCache struct {
	mu      sync.RWMutex
	data    map[Key]entry
	ttl     time.Duration
	now     func() time.Time
	metrics telemetry.Collector
}

// New creates a cache, applying defaults for unset fields
func New(cfg Config) *ResultCache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Metrics == nil {
		cfg.Metrics = telemetry.NoOpCollector{}
	}
	return &ResultCache{
		data:    make(map[Key]entry),
		ttl:     cfg.TTL,
		now:     cfg.Now,
		metrics: cfg.Metrics,
	}
}

// Get returns the payload for key if it has not expired. The returned payload
// is shared and must not be modified.
func (c *ResultCache) Get(key Key) (*models.Payload, bool) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()

	if ok && c.now().Before(e.expiresAt) {
		c.metrics.RecordCacheLookup(true)
		return e.payload, true
	}

	if ok {
		c.mu.Lock()
		// a concurrent Set may have replaced the expired entry
		if cur, still := c.data[key]; still && !c.now().Before(cur.expiresAt) {
			delete(c.data, key)
		}
		c.mu.Unlock()
	}
	c.metrics.RecordCacheLookup(false)
	return nil, false
}

// Set stores payload under key, replacing any previous entry
func (c *ResultCache) Set(key Key, payload *models.Payload) {
	c.mu.Lock()
	c.data[key] = entry{payload: payload, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	c.metrics.RecordCacheStore()
}

// Len returns the number of stored entries, expired or not
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// TTL returns the configured time-to-live
func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}
