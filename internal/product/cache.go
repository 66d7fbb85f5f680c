package product

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedRepo is a read-through Redis cache in front of the featured/new
// listings shown on the home page. Search, detail and stock reads go straight
// to the wrapped repository so add-to-cart never clamps against a stale stock.
// A nil client disables caching.
type CachedRepo struct {
	Repository
	rdb *redis.Client
	ttl time.Duration
}

func NewCachedRepo(inner Repository, rdb *redis.Client, ttl time.Duration) *CachedRepo {
	return &CachedRepo{Repository: inner, rdb: rdb, ttl: ttl}
}

func cacheKey(q Query) string {
	return fmt.Sprintf("catalog:list:f=%t:n=%t:l=%d:o=%d", q.FeaturedOnly, q.NewOnly, q.Limit, q.Offset)
}

func cacheable(q Query) bool {
	return (q.FeaturedOnly || q.NewOnly) && q.Q == "" && q.CategorySlug == "" && q.Sort == ""
}

func (c *CachedRepo) List(ctx context.Context, q Query) ([]Product, error) {
	q = q.Normalize()
	if c.rdb == nil || !cacheable(q) {
		return c.Repository.List(ctx, q)
	}
	key := cacheKey(q)
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var out []Product
		if json.Unmarshal(raw, &out) == nil {
			return out, nil
		}
	}
	out, err := c.Repository.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, data, c.ttl).Err()
	}
	return out, nil
}

// Invalidate drops every cached listing. Called after stock changes.
func (c *CachedRepo) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	iter := c.rdb.Scan(ctx, 0, "catalog:list:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
