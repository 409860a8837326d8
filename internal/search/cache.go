package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Khateeb-Urrahman/ListTube/internal/media"
)

const cacheKeyPrefix = "listtube:search:"

// Cached memoizes another lookup's results in Redis. Redis failures are
// logged and the wrapped lookup is used directly.
type Cached struct {
	next   Lookup
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCached(next Lookup, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cached{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

// cacheKey keeps the query's case: YouTube video ids are case-sensitive.
func cacheKey(query string) string {
	return cacheKeyPrefix + strings.TrimSpace(query)
}

func (c *Cached) Search(ctx context.Context, query string) ([]media.Item, error) {
	if strings.TrimSpace(query) == "" {
		return c.next.Search(ctx, query)
	}
	key := cacheKey(query)

	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var items []media.Item
		if err := json.Unmarshal(data, &items); err == nil {
			return items, nil
		}
		c.logger.Warn("search cache: corrupt entry", "key", key)
	case err != redis.Nil:
		c.logger.Warn("search cache: get", "key", key, "error", err)
	}

	items, err := c.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(items)
	if err != nil {
		return items, nil
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("search cache: set", "key", key, "error", err)
	}
	return items, nil
}
