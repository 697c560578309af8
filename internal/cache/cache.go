// cache — общий для инстансов шлюза кэш окна ротации refresh-токенов в Redis.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ecar-admin/admin-gateway/internal/models"
	"github.com/ecar-admin/admin-gateway/internal/session"

	"github.com/redis/go-redis/v9"
)

type redisRotationCache struct {
	rdb    *redis.Client
	prefix string
	grace  time.Duration
}

// NewRedisRotationCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "gw:rot:".
func NewRedisRotationCache(ctx context.Context, redisURL, prefix string, grace time.Duration) (session.RotationCache, error) {
	const op = "cache.NewRedisRotationCache"

	if prefix == "" {
		prefix = "gw:rot:"
	}
	if grace <= 0 {
		return nil, fmt.Errorf("%s: grace must be positive", op)
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return &redisRotationCache{rdb: rdb, prefix: prefix, grace: grace}, nil
}

func (c *redisRotationCache) key(refresh string) string { return c.prefix + session.HashToken(refresh) }

// Храним как Redis Hash с полями: box (пара, AES-GCM ключом из refresh), at (unix ms); TTL = grace.
// В Redis нет ни исходного refresh, ни пары в открытом виде.
func (c *redisRotationCache) Get(ctx context.Context, refresh string) (models.TokenPair, bool, error) {
	m, err := c.rdb.HGetAll(ctx, c.key(refresh)).Result()
	if err != nil {
		return models.TokenPair{}, false, err
	}

	if len(m) == 0 {
		return models.TokenPair{}, false, nil
	}

	// TTL Redis округляется; граница окна проверяется по времени записи.
	if atMs, err := strconv.ParseInt(m["at"], 10, 64); err == nil {
		if time.Since(time.UnixMilli(atMs)) > c.grace {
			return models.TokenPair{}, false, nil
		}
	}

	pair, err := open(refresh, []byte(m["box"]))
	if err != nil || !pair.Complete() {
		return models.TokenPair{}, false, nil
	}

	return pair, true, nil
}

func (c *redisRotationCache) Set(ctx context.Context, refresh string, pair models.TokenPair) error {
	box, err := seal(refresh, pair)
	if err != nil {
		return err
	}

	kv := map[string]any{
		"box": box,
		"at":  strconv.FormatInt(time.Now().UnixMilli(), 10),
	}

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, c.key(refresh), kv)
	pipe.Expire(ctx, c.key(refresh), c.grace)

	_, err = pipe.Exec(ctx)
	return err
}

func (c *redisRotationCache) Close() error { return c.rdb.Close() }
