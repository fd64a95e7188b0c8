package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Cache 缓存数据源的原始结果，键由调用方拼接
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// MemoryCache 是进程内缓存，过期项在读取时清理
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	value     string
	expiresAt time.Time
}

// NewMemoryCache 创建空的内存缓存
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]memoryItem), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if !ok {
		return "", false, nil
	}
	if !item.expiresAt.IsZero() && !c.now().Before(item.expiresAt) {
		delete(c.items, key)
		return "", false, nil
	}
	return item.value, true, nil
}

// Set ttl <= 0 表示不过期
func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := memoryItem{value: value}
	if ttl > 0 {
		item.expiresAt = c.now().Add(ttl)
	}
	c.items[key] = item
	return nil
}

// RedisCache 基于 go-redis 的共享缓存
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache 包装已有客户端
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) key(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close 关闭底层连接
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// NewCache 在 redisURL 可用时返回 RedisCache，否则退回 MemoryCache。
// Redis 不可达不会阻止服务启动。
func NewCache(ctx context.Context, redisURL string, logger logrus.FieldLogger) Cache {
	redisURL = strings.TrimSpace(redisURL)
	if redisURL == "" {
		return NewMemoryCache()
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.WithError(err).Warn("invalid REDIS_URL, using in-memory provider cache")
		return NewMemoryCache()
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		logger.WithError(err).Warn("redis unreachable, using in-memory provider cache")
		return NewMemoryCache()
	}

	logger.WithField("addr", opts.Addr).Info("provider cache backed by redis")
	return NewRedisCache(client, "habitlog")
}
