// Package metadata persists small client-side key/value state: the cached
// actor id, bearer tokens, and last-sync bookkeeping.
package metadata

import (
	"context"
)

// Well-known metadata keys.
const (
	KeyActorID      = "actor_id"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyLastSyncAt   = "last_sync_at"
)

type Repository interface {
	// Get returns the value stored under key, or nil when absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
