// Package session keeps the signed-in user and their token behind a single
// Repository interface so the auth Provider does not care where they live.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/zerovacancy/zerovacancy/internal/core"
	"github.com/zerovacancy/zerovacancy/internal/storage/archive"
)

// Session is the persisted sign-in state.
type Session struct {
	Token     string    `json:"token"`
	User      core.User `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Repository persists the current session. Get returns core.ErrSessionNotFound
// when nobody is signed in.
type Repository interface {
	Get(ctx context.Context) (*Session, error)
	Set(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

// Config holds session settings
type Config struct {
	Store    string        `mapstructure:"store"` // memory, redis or archive
	Secret   string        `mapstructure:"secret"`
	TTL      time.Duration `mapstructure:"ttl"`
	Issuer   string        `mapstructure:"issuer"`
	RedisURL string        `mapstructure:"redis_url"`
	Key      string        `mapstructure:"key"`
}

const defaultKey = "zerovacancy:session"

// NewRepository builds the configured repository. blobs is only used by the
// archive store.
func NewRepository(ctx context.Context, cfg Config, blobs archive.Storage) (Repository, error) {
	key := cfg.Key
	if key == "" {
		key = defaultKey
	}
	switch cfg.Store {
	case "", "memory":
		return NewMemoryRepository(), nil
	case "redis":
		return NewRedisRepository(ctx, cfg.RedisURL, key, cfg.TTL)
	case "archive":
		if blobs == nil {
			return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("archive session store needs archive storage"))
		}
		return NewArchiveRepository(blobs, key), nil
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown session store %q", cfg.Store))
	}
}
