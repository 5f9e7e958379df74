package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/zerovacancy/zerovacancy/internal/core"
	"github.com/zerovacancy/zerovacancy/internal/storage/archive"
)

// ArchiveRepository stores the session as a JSON blob, which lets the CLI keep
// a login across invocations on local disk or in a bucket.
type ArchiveRepository struct {
	blobs archive.Storage
	key   string
}

func NewArchiveRepository(blobs archive.Storage, key string) *ArchiveRepository {
	// redis-style keys become a path
	key = "sessions/" + strings.ReplaceAll(key, ":", "_") + ".json"
	return &ArchiveRepository{blobs: blobs, key: key}
}

func (r *ArchiveRepository) Get(ctx context.Context) (*Session, error) {
	data, err := r.blobs.Read(ctx, r.key)
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("decode session: %w", err))
	}
	return &s, nil
}

func (r *ArchiveRepository) Set(ctx context.Context, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return r.blobs.Write(ctx, r.key, data)
}

func (r *ArchiveRepository) Clear(ctx context.Context) error {
	return r.blobs.Delete(ctx, r.key)
}
