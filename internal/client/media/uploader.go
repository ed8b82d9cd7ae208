// Package media turns locally-referenced photos into durably-addressable
// remote resources. Uploads are idempotent on already-uploaded items and
// all-or-nothing per batch: partial success is never exposed as success.
package media

import (
	"context"
	"errors"
	"mime"
	"path/filepath"

	"github.com/fieldworks/fieldsync/internal/client/models"
)

// ErrUploadFailed is returned when any attachment in a batch fails to
// upload. Callers must not mark a draft synced, and must not delete it,
// when they see this error; the draft falls back to "saved locally only".
var ErrUploadFailed = errors.New("attachment upload failed")

// Uploader resolves local photo references to remote URLs.
//
// The input order is preserved in the output, and each result keeps its
// original section tag. Items that already carry a RemoteURL pass through
// unchanged without a second upload.
type Uploader interface {
	Upload(ctx context.Context, attachments []models.PhotoAttachment) ([]models.PhotoAttachment, error)
}

// contentTypeFor guesses a MIME type from the file extension, defaulting to
// octet-stream.
func contentTypeFor(localRef string) string {
	if ct := mime.TypeByExtension(filepath.Ext(localRef)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
