package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fieldworks/fieldsync/internal/client/client"
	"github.com/fieldworks/fieldsync/internal/client/models"
)

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

// APIUploader sends attachments to the backend's media endpoint in one
// logical batch and re-attaches the returned URLs positionally.
type APIUploader struct {
	gw client.Gateway
}

func NewAPIUploader(gw client.Gateway) *APIUploader {
	return &APIUploader{gw: gw}
}

func (u *APIUploader) Upload(ctx context.Context, attachments []models.PhotoAttachment) ([]models.PhotoAttachment, error) {
	result := append([]models.PhotoAttachment(nil), attachments...)

	// Indices of items still needing an upload; already-remote items pass
	// through untouched.
	var pending []int
	for i, a := range result {
		if !a.Uploaded() {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return result, nil
	}

	items := make([]client.MediaItem, 0, len(pending))
	for _, i := range pending {
		data, err := readFile(result[i].LocalRef)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrUploadFailed, result[i].LocalRef, err)
		}
		items = append(items, client.MediaItem{
			Name:        filepath.Base(result[i].LocalRef),
			ContentType: contentTypeFor(result[i].LocalRef),
			Data:        data,
		})
	}

	urls, err := u.gw.UploadMedia(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	for j, i := range pending {
		result[i].RemoteURL = urls[j]
	}
	return result, nil
}
