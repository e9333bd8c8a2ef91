package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

// Cache stores JSON values in redis.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

/*
Connect opens a redis client for cfg and pings it. The password comes from
REDIS_PASSWORD so it never lands in the config file.
*/
func Connect(ctx context.Context, cfg Config) (cache *Cache, e *xerr.Error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.operationTimeout())
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, xerr.NewError(err, "ping redis", cfg.Addr)
	}

	tl.Log(tl.Info1, palette.Green, "%s redis at '%s' (db %s)", "Connected to", cfg.Addr, cfg.DB)
	return NewCache(client), nil
}

// Get decodes the value under key into dest. A missing key is found=false, not an error.
func (c *Cache) Get(ctx context.Context, key string, dest any) (found bool, e *xerr.Error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, xerr.NewError(err, "cache get", key)
	}
	if err = json.Unmarshal(value, dest); err != nil {
		return false, xerr.NewError(err, "decode cached value", key)
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) (e *xerr.Error) {
	data, err := json.Marshal(value)
	if err != nil {
		return xerr.NewError(err, "marshal cache value", key)
	}
	if err = c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return xerr.NewError(err, "cache set", key)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) (e *xerr.Error) {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return xerr.NewError(err, "cache delete", keys)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
