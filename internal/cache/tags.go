// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// tags.go caches each blog's top-tag list. The list only changes when a
// post of the blog is written or deleted, and those paths invalidate it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"portfolio/internal/logger"
	"portfolio/internal/models"
)

const (
	// tagKeyPrefix is the Valkey key prefix for cached tag lists.
	tagKeyPrefix = "tags:top:"

	// DefaultTagTTL is how long a tag list stays cached.
	DefaultTagTTL = 10 * time.Minute
)

// TagCache stores top-tag lists in Valkey.
type TagCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewTagCache creates a tag cache backed by the given Valkey client.
func NewTagCache(client *redis.Client, ttl time.Duration) *TagCache {
	if ttl == 0 {
		ttl = DefaultTagTTL
	}
	return &TagCache{client: client, ttl: ttl, log: logger.Z().Named("cache")}
}

// TagKey returns the cache key for a blog's top tags.
func TagKey(blogID uuid.UUID) string {
	return tagKeyPrefix + blogID.String()
}

// Get returns the cached list. A miss or a read error reports false.
func (tc *TagCache) Get(ctx context.Context, blogID uuid.UUID) ([]models.Tag, bool) {
	val, err := tc.client.Get(ctx, TagKey(blogID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		tc.log.Warn("tag cache get error", zap.Stringer("blog_id", blogID), zap.Error(err))
		return nil, false
	}
	var tags []models.Tag
	if err := json.Unmarshal(val, &tags); err != nil {
		tc.log.Warn("tag cache decode error", zap.Stringer("blog_id", blogID), zap.Error(err))
		return nil, false
	}
	return tags, true
}

// Set stores the list with the configured TTL.
func (tc *TagCache) Set(ctx context.Context, blogID uuid.UUID, tags []models.Tag) {
	if tags == nil {
		tags = []models.Tag{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		tc.log.Warn("tag cache encode error", zap.Stringer("blog_id", blogID), zap.Error(err))
		return
	}
	if err := tc.client.Set(ctx, TagKey(blogID), data, tc.ttl).Err(); err != nil {
		tc.log.Warn("tag cache set error", zap.Stringer("blog_id", blogID), zap.Error(err))
	}
}

// Invalidate removes a blog's cached list.
func (tc *TagCache) Invalidate(ctx context.Context, blogID uuid.UUID) error {
	if err := tc.client.Del(ctx, TagKey(blogID)).Err(); err != nil {
		return err
	}
	tc.log.Debug("tag cache invalidated", zap.Stringer("blog_id", blogID))
	return nil
}

// InvalidateAll removes every cached list by scanning for the prefix.
func (tc *TagCache) InvalidateAll(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := tc.client.Scan(ctx, cursor, tagKeyPrefix+"*", 100).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			if err := tc.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, err
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return deleted, nil
}
