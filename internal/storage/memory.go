package storage

import (
	"context"
	"sync"

	"github.com/hammamikhairi/recipebot/internal/domain"
	"github.com/hammamikhairi/recipebot/internal/logger"
)

// Compile-time interface check.
var _ KV = (*MemoryKV)(nil)

// MemoryKV is an in-memory key-value store. Nothing survives the
// process; use it for tests and throwaway sessions.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
	log    *logger.Logger
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV(log *logger.Logger) *MemoryKV {
	return &MemoryKV{
		values: make(map[string]string),
		log:    log,
	}
}

// Get returns the value stored under key.
func (s *MemoryKV) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		s.log.Debug("memory kv: %s not found", key)
		return "", domain.ErrNotFound
	}
	return v, nil
}

// Set stores value under key, replacing any previous value.
func (s *MemoryKV) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug("memory kv: set %s (%d bytes)", key, len(value))
	s.values[key] = value
	return nil
}

// Close is a no-op.
func (s *MemoryKV) Close() error { return nil }
