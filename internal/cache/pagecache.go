// Package cache keeps recently fetched pages in Redis so repeated imports
// of the same URL do not hit the origin again.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"bonchef/internal/fetcher"
	"bonchef/internal/infra"
)

const (
	keyPrefix  = "bonchef:page:"
	defaultTTL = time.Hour

	// StrategyCache marks responses served from the cache.
	StrategyCache = "cache"
)

var errMiss = errors.New("cache miss")

// Fetcher is the upstream page fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetcher.Response, error)
}

// KV is the byte store behind the page cache.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisKV adapts a go-redis client to KV.
type RedisKV struct {
	Client *redis.Client
}

func (r RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errMiss
	}
	return data, err
}

func (r RedisKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.Client.Set(ctx, key, value, ttl).Err()
}

type cachedPage struct {
	URL  string `json:"url"`
	Body []byte `json:"body"`
}

// PageCache decorates a Fetcher. Cache errors are logged and never fail a
// fetch.
type PageCache struct {
	next    Fetcher
	kv      KV
	ttl     time.Duration
	logger  *infra.Logger
	metrics *infra.Metrics
}

func NewPageCache(next Fetcher, kv KV, ttl time.Duration, logger *infra.Logger, metrics *infra.Metrics) *PageCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &PageCache{next: next, kv: kv, ttl: ttl, logger: infra.LoggerOrDiscard(logger), metrics: metrics}
}

func (c *PageCache) Fetch(ctx context.Context, rawURL string) (*fetcher.Response, error) {
	key := cacheKey(rawURL)
	if raw, err := c.kv.Get(ctx, key); err == nil {
		var page cachedPage
		if err := json.Unmarshal(raw, &page); err == nil && len(page.Body) > 0 {
			c.metrics.ObservePageCache("hit")
			return &fetcher.Response{URL: page.URL, StatusCode: 200, Body: page.Body, Strategy: StrategyCache}, nil
		}
	} else if !errors.Is(err, errMiss) {
		c.logger.Warn().Err(err).Str("url", rawURL).Msg("cache: lookup failed")
	}
	c.metrics.ObservePageCache("miss")

	resp, err := c.next.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if fetcher.IsChallenge(resp.Body) {
		return resp, nil
	}
	payload, err := json.Marshal(cachedPage{URL: resp.URL, Body: resp.Body})
	if err == nil {
		err = c.kv.Set(ctx, key, payload, c.ttl)
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("url", rawURL).Msg("cache: store failed")
	}
	return resp, nil
}

func cacheKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return keyPrefix + hex.EncodeToString(sum[:])
}
