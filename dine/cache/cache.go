// Package cache implements the TTL response cache for AI-generated feature
// copy. One entry per (restaurant, query kind); entries expire 24 hours after
// they were produced and are purged lazily on the read that finds them stale.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tabletalk/tabletalk-go/kv"
)

// TTL is how long a cached response stays servable. Fixed for every kind.
const TTL = 24 * time.Hour

const keyPrefix = "aicache:"

type entry struct {
	Value      string    `json:"value"`
	ProducedAt time.Time `json:"producedAt"`
}

// ResponseCache maps (entityID, kind) to the last successful provider
// response. Concurrent get/put for the same key race benignly: last put wins.
type ResponseCache struct {
	kv  kv.Store
	now func() time.Time
}

// New wraps the given key-value store.
func New(store kv.Store) *ResponseCache {
	return &ResponseCache{kv: store, now: time.Now}
}

func cacheKey(entityID, kind string) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, entityID, kind)
}

func entityPrefix(entityID string) string {
	return keyPrefix + entityID + ":"
}

// Get returns the cached value for (entityID, kind) and whether it was
// present. An entry past its TTL is deleted and reported absent.
func (c *ResponseCache) Get(ctx context.Context, entityID, kind string) (string, bool) {
	key := cacheKey(entityID, kind)
	raw, ok, err := c.kv.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return "", false
	}
	if !ok {
		return "", false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		// Unreadable entries are treated like expired ones.
		log.Warn().Err(err).Str("key", key).Msg("cache entry undecodable, purging")
		_ = c.kv.Delete(ctx, key)
		return "", false
	}
	if c.now().Sub(e.ProducedAt) > TTL {
		if err := c.kv.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("expired cache entry delete failed")
		}
		return "", false
	}
	return e.Value, true
}

// Put overwrites any existing entry for (entityID, kind). Callers treat the
// write as fire-and-forget: the returned error is for retry/telemetry only
// and must never surface past the resolution layer.
func (c *ResponseCache) Put(ctx context.Context, entityID, kind, value string) error {
	raw, err := json.Marshal(entry{Value: value, ProducedAt: c.now()})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	key := cacheKey(entityID, kind)
	if err := c.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write cache entry %s: %w", key, err)
	}
	return nil
}

// ClearAll removes every cached response.
func (c *ResponseCache) ClearAll(ctx context.Context) error {
	return c.clearPrefix(ctx, keyPrefix)
}

// ClearEntity removes every cached response for one restaurant.
func (c *ResponseCache) ClearEntity(ctx context.Context, entityID string) error {
	return c.clearPrefix(ctx, entityPrefix(entityID))
}

func (c *ResponseCache) clearPrefix(ctx context.Context, prefix string) error {
	keys, err := c.kv.ListKeys(ctx, prefix)
	if err != nil {
		return fmt.Errorf("list cache keys: %w", err)
	}
	for _, k := range keys {
		if err := c.kv.Delete(ctx, k); err != nil {
			return fmt.Errorf("delete cache key %s: %w", k, err)
		}
	}
	return nil
}
