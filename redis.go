package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// initRedis connects to Redis at addr, accepting either host:port or a full URL
func initRedis(addr string) (*redis.Client, error) {
	opt, err := redis.ParseURL(addr)
	if err != nil {
		opt, err = redis.ParseURL(fmt.Sprintf("redis://%s", addr))
	}
	if err != nil {
		// Fallback to simple connection
		opt = &redis.Options{
			Addr: addr,
		}
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// cache is a read-through JSON cache keyed per owner. A nil cache or a nil
// client is a no-op, so the service keeps working without Redis.
type cache struct {
	client       *redis.Client
	recordTTL    time.Duration
	analyticsTTL time.Duration
}

var ownerRecordKinds = []string{"expenses", "income", "shares"}
var ownerAnalyticsKinds = []string{"summary", "macd", "portfolio"}

func recordsKey(owner, kind string) string {
	return fmt.Sprintf("records:%s:%s", owner, kind)
}

func analyticsKey(owner, kind string) string {
	return fmt.Sprintf("analytics:%s:%s", owner, kind)
}

func (c *cache) enabled() bool {
	return c != nil && c.client != nil
}

// get decodes the cached value at key into dst and reports whether it did.
func (c *cache) get(ctx context.Context, key string, dst any) bool {
	if !c.enabled() {
		return false
	}
	cached, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	return json.Unmarshal([]byte(cached), dst) == nil
}

func (c *cache) set(ctx context.Context, key string, v any, ttl time.Duration) {
	if !c.enabled() || ttl <= 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.SetEx(ctx, key, data, ttl).Err(); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (c *cache) setRecords(ctx context.Context, key string, v any) {
	if c.enabled() {
		c.set(ctx, key, v, c.recordTTL)
	}
}

func (c *cache) setAnalytics(ctx context.Context, key string, v any) {
	if c.enabled() {
		c.set(ctx, key, v, c.analyticsTTL)
	}
}

// invalidateOwner drops every cached record list and analytics result of owner.
func (c *cache) invalidateOwner(ctx context.Context, owner string) {
	if !c.enabled() {
		return
	}
	keys := make([]string, 0, len(ownerRecordKinds)+len(ownerAnalyticsKinds))
	for _, kind := range ownerRecordKinds {
		keys = append(keys, recordsKey(owner, kind))
	}
	for _, kind := range ownerAnalyticsKinds {
		keys = append(keys, analyticsKey(owner, kind))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warn().Err(err).Str("owner", owner).Msg("cache invalidation failed")
	}
}

// invalidateAnalytics drops the given analytics kind for every owner; quotes
// are shared, so a quote change affects all portfolios.
func (c *cache) invalidateAnalytics(ctx context.Context, kinds ...string) {
	if !c.enabled() {
		return
	}
	for _, kind := range kinds {
		iter := c.client.Scan(ctx, 0, analyticsKey("*", kind), 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			logger.Warn().Err(err).Str("kind", kind).Msg("cache scan failed")
			continue
		}
		if len(keys) == 0 {
			continue
		}
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			logger.Warn().Err(err).Str("kind", kind).Msg("cache invalidation failed")
		}
	}
}
