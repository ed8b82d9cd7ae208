package client

import (
	"context"
	"errors"

	"github.com/fieldworks/fieldsync/internal/client/models"
	"github.com/fieldworks/fieldsync/internal/common"
)

// Upsert implements update-else-create against the gateway.
//
// With a known record id it attempts an update and returns the same id on
// success. An ownership-style rejection drops the id and falls back to
// create: the cached id may reference a record that was reassigned to
// another technician, and a fresh record under the current actor is better
// than a dead end. Every other update failure propagates unchanged — no
// silent duplicates.
func Upsert(ctx context.Context, g Gateway, recordID string, payload models.Payload) (string, error) {
	if recordID == "" || recordID == common.AdhocRecordID {
		return g.Create(ctx, payload)
	}

	err := g.Update(ctx, recordID, payload)
	if err == nil {
		return recordID, nil
	}
	if errors.Is(err, common.ErrOwnershipRejected) {
		return g.Create(ctx, payload)
	}
	return "", err
}
