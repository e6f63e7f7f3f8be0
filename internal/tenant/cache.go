package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"inventory-service/internal/model"
	"inventory-service/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache holds tenant records in front of the directory table. Implementations
// must treat every failure as a miss; the database stays authoritative.
type Cache interface {
	Get(ctx context.Context, id string) (*model.Tenant, bool)
	Set(ctx context.Context, tenant *model.Tenant, ttl time.Duration)
	Delete(ctx context.Context, id string)
}

// NopCache caches nothing.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*model.Tenant, bool) {
	return nil, false
}

func (NopCache) Set(context.Context, *model.Tenant, time.Duration) {}

func (NopCache) Delete(context.Context, string) {}

const redisKeyPrefix = "inventory:tenant:"

// RedisCache stores JSON encoded tenants in Redis.
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

// ConnectRedis parses url, pings the server and returns a ready client.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context, id string) (*model.Tenant, bool) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.FromContext(ctx).Warn("Tenant cache read failed", zap.String("tenant_id", id), zap.Error(err))
		}
		return nil, false
	}

	var t model.Tenant
	if err := json.Unmarshal(raw, &t); err != nil {
		logger.FromContext(ctx).Warn("Tenant cache entry is corrupt", zap.String("tenant_id", id), zap.Error(err))
		c.Delete(ctx, id)
		return nil, false
	}
	return &t, true
}

func (c *RedisCache) Set(ctx context.Context, tenant *model.Tenant, ttl time.Duration) {
	raw, err := json.Marshal(tenant)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+tenant.ID, raw, ttl).Err(); err != nil {
		logger.FromContext(ctx).Warn("Tenant cache write failed", zap.String("tenant_id", tenant.ID), zap.Error(err))
	}
}

func (c *RedisCache) Delete(ctx context.Context, id string) {
	if err := c.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		logger.FromContext(ctx).Warn("Tenant cache delete failed", zap.String("tenant_id", id), zap.Error(err))
	}
}
