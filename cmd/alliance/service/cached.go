package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/cache"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/logger"
)

// Cache keys, one per collection. These are the read-after-write units: a
// mutation deletes exactly the keys whose collection it changed.
func rulesKey(allianceID uuid.UUID) string        { return "rules:" + allianceID.String() }
func ownershipsKey(seasonID uuid.UUID) string     { return "ownerships:" + seasonID.String() }
func membersKey(allianceID uuid.UUID) string      { return "members:" + allianceID.String() }
func subscriptionKey(allianceID uuid.UUID) string { return "subscription:" + allianceID.String() }

// CollectionCache wraps the byte cache with JSON encoding for collection
// reads. Cache failures on the read path degrade to the repository; cache
// failures on the invalidation path are returned, because swallowing them
// would break read-after-write.
type CollectionCache struct {
	cache cache.Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewCollectionCache creates the shared collection cache
func NewCollectionCache(c cache.Cache, ttl time.Duration, log *logger.Logger) *CollectionCache {
	return &CollectionCache{cache: c, ttl: ttl, log: log}
}

// get loads a cached collection into dest. Returns false on miss or any
// cache/decode error; the caller falls through to the repository.
func (c *CollectionCache) get(ctx context.Context, key string, dest interface{}) bool {
	data, found, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache read failed", "key", key, "error", err)
		return false
	}
	if !found {
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.log.Warn("cache entry corrupt, dropping", "key", key, "error", err)
		_ = c.cache.Delete(ctx, key)
		return false
	}

	return true
}

// put stores a collection. Best effort: a failed put only costs the next
// read a repository round trip.
func (c *CollectionCache) put(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("cache encode failed", "key", key, "error", err)
		return
	}

	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.log.Warn("cache write failed", "key", key, "error", err)
	}
}

// drop synchronously invalidates a key after a mutation
func (c *CollectionCache) drop(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := c.cache.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to invalidate cache key %s: %w", key, err)
		}
	}
	return nil
}
