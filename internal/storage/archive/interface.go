// Package archive stores opaque blobs such as fixture exports and persisted
// sessions on the local filesystem or an S3-compatible bucket.
package archive

import (
	"context"
	"fmt"
	"strings"

	"github.com/zerovacancy/zerovacancy/internal/core"
)

// Storage defines the interface for blob storage backends
type Storage interface {
	// Write stores data at the given key, replacing any previous value
	Write(ctx context.Context, key string, data []byte) error

	// Read retrieves data for key; a missing key yields core.ErrNotFound
	Read(ctx context.Context, key string) ([]byte, error)

	// List returns all keys under the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Exists checks if key is present
	Exists(ctx context.Context, key string) (bool, error)
}

// Config selects and configures a backend.
type Config struct {
	Type string // "localfs" or "s3"
	Path string
	S3   S3Config
}

// New builds the configured backend.
func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "localfs":
		return NewLocalFS(cfg.Path)
	case "s3":
		return NewS3(cfg.S3)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown archive type %q", cfg.Type))
	}
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return core.Validation("archive key must be a non-empty relative path", map[string]any{"key": key})
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return core.Validation("archive key must not escape its root", map[string]any{"key": key})
		}
	}
	return nil
}
