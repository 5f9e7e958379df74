package session

import (
	"context"
	"sync"

	"github.com/zerovacancy/zerovacancy/internal/core"
)

// MemoryRepository keeps the session in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	current *Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Get(ctx context.Context) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return nil, core.ErrSessionNotFound
	}
	s := *r.current
	return &s, nil
}

func (r *MemoryRepository) Set(ctx context.Context, s Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = &s
	return nil
}

func (r *MemoryRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = nil
	return nil
}
