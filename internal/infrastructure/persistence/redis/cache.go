package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"novel-studio-api/pkg/logger"
	"novel-studio-api/pkg/metrics"
)

var cacheTracer = otel.Tracer("redis.cache")

// Cache 读穿缓存；name 作为指标标签区分不同用途
type Cache struct {
	client *Client
	name   string
	group  singleflight.Group
}

// NewCache 创建缓存服务
func NewCache(client *Client, name string) *Cache {
	return &Cache{
		client: client,
		name:   name,
	}
}

func (c *Cache) observe(result string) {
	metrics.CacheRequestsTotal.WithLabelValues(c.name, result).Inc()
}

// Get 获取缓存值，未命中时返回 redis.Nil
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := cacheTracer.Start(ctx, "cache.Get",
		trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	val, err := c.client.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if IsNil(err) {
			c.observe("miss")
			span.SetAttributes(attribute.Bool("cache.hit", false))
			return nil, err
		}
		c.observe("error")
		span.RecordError(err)
		return nil, err
	}

	c.observe("hit")
	span.SetAttributes(attribute.Bool("cache.hit", true))
	return val, nil
}

// Set 设置缓存值（JSON 序列化）
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	ctx, span := cacheTracer.Start(ctx, "cache.Set",
		trace.WithAttributes(
			attribute.String("cache.key", key),
			attribute.Int64("cache.ttl_ms", ttl.Milliseconds()),
		))
	defer span.End()

	bytes, err := json.Marshal(value)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.client.rdb.Set(ctx, key, bytes, ttl).Err()
}

// GetOrLoadSafe 读穿缓存，并用 singleflight 合并同一键的并发加载
// Redis 读取失败时直接回源，不阻断调用方
func (c *Cache) GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (any, error)) ([]byte, error) {
	ctx, span := cacheTracer.Start(ctx, "cache.GetOrLoadSafe",
		trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	val, err := c.client.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		c.observe("hit")
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return val, nil
	case IsNil(err):
		c.observe("miss")
	default:
		c.observe("error")
		span.RecordError(err)
		logger.Warn(ctx, "cache read failed, falling back to loader", "key", key, "error", err.Error())
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	result, err, shared := c.group.Do(key, func() (any, error) {
		data, err := loader()
		if err != nil {
			return nil, err
		}

		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal data: %w", err)
		}

		if err := c.client.rdb.Set(ctx, key, bytes, ttl).Err(); err != nil {
			span.RecordError(err)
		}
		return bytes, nil
	})

	span.SetAttributes(attribute.Bool("cache.shared", shared))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return result.([]byte), nil
}

// Delete 删除缓存
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	ctx, span := cacheTracer.Start(ctx, "cache.Delete",
		trace.WithAttributes(attribute.Int("cache.key_count", len(keys))))
	defer span.End()

	return c.client.rdb.Del(ctx, keys...).Err()
}

// InvalidatePattern 按模式使缓存失效
func (c *Cache) InvalidatePattern(ctx context.Context, pattern string) error {
	ctx, span := cacheTracer.Start(ctx, "cache.InvalidatePattern",
		trace.WithAttributes(attribute.String("cache.pattern", pattern)))
	defer span.End()

	iter := c.client.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		span.RecordError(err)
		return err
	}

	if len(keys) > 0 {
		span.SetAttributes(attribute.Int("cache.invalidated_count", len(keys)))
		return c.client.rdb.Del(ctx, keys...).Err()
	}
	return nil
}
