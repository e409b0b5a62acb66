// Package storage provides the key-value backends behind the saved
// recipe list, and the codec that stores that list under one key.
package storage

import "context"

// KV is a string key-value store. Get returns domain.ErrNotFound when
// the key has never been set. Implementations must be safe for
// concurrent use.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}
