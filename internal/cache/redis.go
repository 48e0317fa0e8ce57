// Package cache keeps rendered leaderboards in redis between recomputes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jeopardy-ctf/scoring-api/internal/config"
)

func EventBoardKey(eventID, kind string) string {
	return fmt.Sprintf("leaderboard:event:%s:%s", eventID, kind)
}

func LeagueStandingsKey(leagueID string) string {
	return "standings:league:" + leagueID
}

func Connect(ctx context.Context, conf *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
		PoolSize: 100,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("client.Ping -> %w", err)
	}

	zap.L().Info("redis connection established", zap.String("addr", conf.Addr))

	return client, nil
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

// Get decodes the cached value into dst. A miss returns false and no error.
func (c *RedisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("c.client.Get -> %w", err)
	}

	if err := json.Unmarshal(val, dst); err != nil {
		return false, fmt.Errorf("json.Unmarshal -> %w", err)
	}

	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("c.client.Set -> %w", err)
	}

	return nil
}

// SetIfAbsent writes value only when key holds nothing.
func (c *RedisCache) SetIfAbsent(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	if err := c.client.SetNX(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("c.client.SetNX -> %w", err)
	}

	return nil
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("c.client.Del -> %w", err)
	}
	return nil
}

// Nop is used when no redis address is configured; every read misses.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (bool, error) { return false, nil }

func (Nop) Set(context.Context, string, any) error { return nil }

func (Nop) SetIfAbsent(context.Context, string, any) error { return nil }

func (Nop) Delete(context.Context, ...string) error { return nil }
