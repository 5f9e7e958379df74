package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zerovacancy/zerovacancy/internal/core"
)

// RedisRepository stores the session as JSON under a single key.
type RedisRepository struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// NewRedisRepository connects to url and verifies the connection.
func NewRedisRepository(ctx context.Context, url, key string, ttl time.Duration) (*RedisRepository, error) {
	if url == "" {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("session redis_url is required"))
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("failed to parse redis URL: %w", err))
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, core.Network("failed to connect to redis", err)
	}

	return NewRedisRepositoryFromClient(rdb, key, ttl), nil
}

// NewRedisRepositoryFromClient wraps an existing client.
func NewRedisRepositoryFromClient(rdb *redis.Client, key string, ttl time.Duration) *RedisRepository {
	if key == "" {
		key = defaultKey
	}
	return &RedisRepository{rdb: rdb, key: key, ttl: ttl}
}

func (r *RedisRepository) Get(ctx context.Context) (*Session, error) {
	data, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrSessionNotFound
	}
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("get session: %w", err))
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("decode session: %w", err))
	}
	return &s, nil
}

func (r *RedisRepository) Set(ctx context.Context, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return core.WrapError(core.ErrStorageFailed, fmt.Errorf("set session: %w", err))
	}
	return nil
}

func (r *RedisRepository) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return core.WrapError(core.ErrStorageFailed, fmt.Errorf("clear session: %w", err))
	}
	return nil
}

// Close closes the Redis connection.
func (r *RedisRepository) Close() error {
	return r.rdb.Close()
}
