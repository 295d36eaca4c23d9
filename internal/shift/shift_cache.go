package shift

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	ListCacheKeyPrefix = "shifts:list:"
	VersionKeyPrefix   = "shifts:version:"
	DefaultListTTL     = 5 * time.Minute
)

func VersionKey(storeID string) string {
	return VersionKeyPrefix + storeID
}

// ListKey addresses one cached page. Bumping the store version orphans every
// older key, which then expire on their own.
func ListKey(storeID string, version int64, q Query, page, pageSize int) string {
	return fmt.Sprintf("%s%s:v%d:%s|%s|%s|%s|%d|%d",
		ListCacheKeyPrefix, storeID, version,
		unixOrEmpty(q.From), unixOrEmpty(q.To), q.UserID, q.Status, page, pageSize)
}

type cachedPage struct {
	Items []Shift `json:"items"`
	Total int64   `json:"total"`
}

// ListCache stores list pages per store. A nil client disables it.
type ListCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewListCache(rdb *redis.Client, ttl time.Duration, logger ...*zap.Logger) *ListCache {
	l := zap.L().Named("shift.cache")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("shift.cache")
	}
	if ttl <= 0 {
		ttl = DefaultListTTL
	}
	return &ListCache{rdb: rdb, ttl: ttl, logger: l}
}

// Key resolves the current versioned key for a page.
func (c *ListCache) Key(ctx context.Context, storeID string, q Query, page, pageSize int) string {
	var version int64
	if c != nil && c.rdb != nil {
		v, err := c.rdb.Get(ctx, VersionKey(storeID)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			c.logger.Warn("read shift cache version failed", zap.String("store_id", storeID), zap.Error(err))
		}
		version = v
	}
	return ListKey(storeID, version, q, page, pageSize)
}

func (c *ListCache) Get(ctx context.Context, key string) ([]Shift, int64, bool) {
	if c == nil || c.rdb == nil {
		return nil, 0, false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("read shift cache failed", zap.String("key", key), zap.Error(err))
		}
		return nil, 0, false
	}

	var page cachedPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, 0, false
	}
	return page.Items, page.Total, true
}

func (c *ListCache) Set(ctx context.Context, key string, items []Shift, total int64) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(cachedPage{Items: items, Total: total})
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("write shift cache failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops every cached page of a store.
func (c *ListCache) Invalidate(ctx context.Context, storeID string) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Incr(ctx, VersionKey(storeID)).Err(); err != nil {
		c.logger.Error("failed to invalidate shift list cache",
			zap.String("key", VersionKey(storeID)),
			zap.Error(err),
		)
	}
}

func unixOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return fmt.Sprint(t.Unix())
}
