// Package client defines the Remote Record Gateway: the request layer the
// sync engine uses to talk to the field-operations backend, plus local
// database initialization.
package client

import (
	"context"
	"encoding/json"

	"github.com/fieldworks/fieldsync/internal/client/models"
)

// MediaItem is one attachment in an upload batch. SectionTag travels as
// side-channel metadata only; it is never embedded in the resulting URL.
type MediaItem struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// Gateway is the remote record store as the core sees it: an opaque,
// REST-shaped task/audit/visit store with upsert semantics layered on top
// (see Upsert).
type Gateway interface {
	Close() error

	// Ping checks server liveness.
	Ping(ctx context.Context) error

	// Login authenticates and returns the technician (actor) id.
	Login(ctx context.Context, username, password string) (string, error)

	// ListAssigned returns the records the technician may act on.
	ListAssigned(ctx context.Context) ([]models.AssignedRecord, error)

	// Fetch returns one record with its full server-side state, including
	// already-synced section data. Absent records map to common.ErrNotFound.
	Fetch(ctx context.Context, recordID string) (*models.RemoteRecord, error)

	// Create posts a new record and returns its id.
	Create(ctx context.Context, payload models.Payload) (string, error)

	// Update replaces a whole record. May fail with
	// common.ErrOwnershipRejected when the record belongs to someone else.
	Update(ctx context.Context, recordID string, payload models.Payload) error

	// PatchSection updates one section of a record, used for incremental
	// per-section equipment-check saves.
	PatchSection(ctx context.Context, recordID, checkKey string, section map[string]json.RawMessage) error

	// UploadMedia sends one ordered batch of attachments and returns, in
	// the same order, their durable URLs.
	UploadMedia(ctx context.Context, items []MediaItem) ([]string, error)
}
