package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/terraincognita07/patientlog/internal/config"
)

const (
	dashboardKeyPrefix = "patientlog:dashboard:"
	defaultTTL         = 10 * time.Minute
)

// ErrCacheMiss means no value is cached for the requested user and range.
var ErrCacheMiss = errors.New("cache miss")

// DashboardCache stores computed dashboards in one Redis hash per user, keyed by range.
// Dropping the hash invalidates every cached range for that user at once.
type DashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

func NewDashboardCache(client *redis.Client, ttl time.Duration) *DashboardCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &DashboardCache{client: client, ttl: ttl}
}

// ParseTTL reads a duration such as "10m"; blank input yields the default.
func ParseTTL(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultTTL, nil
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse redis ttl: %w", err)
	}
	return ttl, nil
}

// A nil *DashboardCache is a valid, always-missing cache.
func (cache *DashboardCache) Get(ctx context.Context, userID uint, rangeKey string, dest any) error {
	if cache == nil {
		return ErrCacheMiss
	}
	raw, err := cache.client.HGet(ctx, dashboardKey(userID), rangeKey).Result()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("read dashboard cache: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("decode dashboard cache: %w", err)
	}
	return nil
}

func (cache *DashboardCache) Set(ctx context.Context, userID uint, rangeKey string, value any) error {
	if cache == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode dashboard cache: %w", err)
	}

	key := dashboardKey(userID)
	pipe := cache.client.TxPipeline()
	pipe.HSet(ctx, key, rangeKey, payload)
	pipe.Expire(ctx, key, cache.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write dashboard cache: %w", err)
	}
	return nil
}

func (cache *DashboardCache) Invalidate(ctx context.Context, userID uint) error {
	if cache == nil {
		return nil
	}
	if err := cache.client.Del(ctx, dashboardKey(userID)).Err(); err != nil {
		return fmt.Errorf("invalidate dashboard cache: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool. Closing a nil cache is a no-op.
func (cache *DashboardCache) Close() error {
	if cache == nil {
		return nil
	}
	return cache.client.Close()
}

func dashboardKey(userID uint) string {
	return fmt.Sprintf("%s%d", dashboardKeyPrefix, userID)
}
