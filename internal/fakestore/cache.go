package fakestore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL is how long FakeStore responses are served from Redis.
const DefaultCacheTTL = 5 * time.Minute

// Catalog is the read surface shared by Client and CachedClient.
type Catalog interface {
	GetProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id int) (*Product, error)
	GetCategories(ctx context.Context) ([]string, error)
	GetProductsByCategory(ctx context.Context, category string) ([]Product, error)
}

var (
	_ Catalog = (*Client)(nil)
	_ Catalog = (*CachedClient)(nil)
)

// Cache is the subset of the Redis client used for response caching.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedClient serves successful FakeStore reads from Redis. Failed or
// empty upstream responses are never cached. Redis errors fall through
// to the upstream call.
type CachedClient struct {
	upstream Catalog
	cache    Cache
	ttl      time.Duration
	prefix   string
	logger   *slog.Logger
}

// NewCachedClient wraps upstream with a Redis read-through cache.
func NewCachedClient(upstream Catalog, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedClient {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedClient{
		upstream: upstream,
		cache:    cache,
		ttl:      ttl,
		prefix:   "emporium:fakestore:",
		logger:   logger,
	}
}

func (c *CachedClient) GetProducts(ctx context.Context) ([]Product, error) {
	return cached(ctx, c, "products", func() ([]Product, bool, error) {
		p, err := c.upstream.GetProducts(ctx)
		return p, len(p) > 0, err
	})
}

func (c *CachedClient) GetProduct(ctx context.Context, id int) (*Product, error) {
	return cached(ctx, c, "product:"+strconv.Itoa(id), func() (*Product, bool, error) {
		p, err := c.upstream.GetProduct(ctx, id)
		return p, p != nil, err
	})
}

func (c *CachedClient) GetCategories(ctx context.Context) ([]string, error) {
	return cached(ctx, c, "categories", func() ([]string, bool, error) {
		cats, err := c.upstream.GetCategories(ctx)
		return cats, len(cats) > 0, err
	})
}

func (c *CachedClient) GetProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	return cached(ctx, c, "category:"+url.PathEscape(category), func() ([]Product, bool, error) {
		p, err := c.upstream.GetProductsByCategory(ctx, category)
		return p, len(p) > 0, err
	})
}

// cached returns the value stored under key, or calls fetch and stores
// its result when fetch reports it worth keeping.
func cached[T any](ctx context.Context, c *CachedClient, key string, fetch func() (T, bool, error)) (T, error) {
	key = c.prefix + key

	raw, err := c.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		if jsonErr := json.Unmarshal(raw, &v); jsonErr == nil {
			return v, nil
		}
		c.logger.WarnContext(ctx, "discarding unreadable FakeStore cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "FakeStore cache read failed", "key", key, "error", err)
	}

	v, keep, err := fetch()
	if err != nil || !keep {
		return v, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}
	if err := c.cache.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "FakeStore cache write failed", "key", key, "error", err)
	}
	return v, nil
}
