package drafts

import (
	"context"

	"github.com/fieldworks/fieldsync/internal/client/models"
)

// Repository is the Draft Store: keyed local persistence of in-progress form
// state, independent of the network.
//
// Callers always supply the whole DraftRecord; there are no partial-field
// writes. "Not found" is absence, not an error. Persistence failures are
// returned to the caller and must never be swallowed: a failed Put blocks
// the "Draft Saved" confirmation upstream.
type Repository interface {
	// Get returns the record stored under key, or (nil, nil) when absent.
	Get(ctx context.Context, key string) (*models.DraftRecord, error)

	// Put overwrites the whole record stored under key.
	Put(ctx context.Context, key string, record *models.DraftRecord) error

	// Delete removes the record under key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// ListKeys returns the stored keys matching the prefix, ordered by
	// most recently updated first. An empty prefix matches everything.
	ListKeys(ctx context.Context, prefix string) ([]string, error)

	// CountKeys returns the number of stored keys matching the prefix.
	CountKeys(ctx context.Context, prefix string) (int, error)
}
