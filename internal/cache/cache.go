package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ScopeCache — минимальный контракт кэша набора scope-токенов пользователя.
// Кэш опционален: сервис без него ходит напрямую в проекцию user_scopes.
type ScopeCache interface {
	// Get возвращает набор токенов и признак его наличия в кэше.
	Get(ctx context.Context, userID int64) ([]string, bool, error)
	// Set сохраняет набор токенов с TTL.
	Set(ctx context.Context, userID int64, scopes []string, ttl time.Duration) error
	// Invalidate сбрасывает набор пользователя (вызывается при любой
	// мутации его грантов).
	Invalidate(ctx context.Context, userID int64) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "ent:scopes:".
func NewRedisCache(redisURL, prefix string) (ScopeCache, error) {
	if prefix == "" {
		prefix = "ent:scopes:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &redisCache{rdb: rdb, prefix: prefix}, nil
}

func (c *redisCache) key(userID int64) string {
	return c.prefix + strconv.FormatInt(userID, 10)
}

// Храним как Redis Set из scope-токенов; пустой набор кодируем маркером,
// чтобы отличать "кэшировано пусто" от "нет в кэше".
const emptyMarker = "\x00empty"

func (c *redisCache) Get(ctx context.Context, userID int64) ([]string, bool, error) {
	members, err := c.rdb.SMembers(ctx, c.key(userID)).Result()
	if err != nil {
		return nil, false, err
	}

	if len(members) == 0 {
		return nil, false, nil
	}

	scopes := make([]string, 0, len(members))
	for _, m := range members {
		if m == emptyMarker {
			continue
		}
		scopes = append(scopes, m)
	}

	return scopes, true, nil
}

func (c *redisCache) Set(ctx context.Context, userID int64, scopes []string, ttl time.Duration) error {
	members := make([]any, 0, len(scopes)+1)
	members = append(members, emptyMarker)
	for _, s := range scopes {
		members = append(members, s)
	}

	key := c.key(userID)

	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, ttl)

	_, err := pipe.Exec(ctx)
	return err
}

func (c *redisCache) Invalidate(ctx context.Context, userID int64) error {
	return c.rdb.Del(ctx, c.key(userID)).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }
