package drafts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fieldworks/fieldsync/internal/client/models"
	"github.com/fieldworks/fieldsync/internal/common"
	"github.com/fieldworks/fieldsync/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or
// *sql.Tx). Payload, attachments and completed flags are stored as JSON
// text columns; the key is the spec'd composite string.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get returns the stored draft, or (nil, nil) when no draft exists for key.
func (r *SQLiteRepository) Get(ctx context.Context, key string) (*models.DraftRecord, error) {
	query := `SELECT payload, attachments, completed, remote_record_id, owner_id, updated_at
		FROM drafts WHERE key = ?`
	row := r.db.QueryRowContext(ctx, query, key)

	var payload, attachments, completed []byte
	var remoteRecordID, ownerID string
	var updatedAt int64
	err := row.Scan(&payload, &attachments, &completed, &remoteRecordID, &ownerID, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get draft %s: %v", common.ErrLocalPersistence, key, err)
	}

	rec := &models.DraftRecord{
		RemoteRecordID: remoteRecordID,
		OwnerID:        ownerID,
		UpdatedAt:      time.Unix(updatedAt, 0).UTC(),
	}
	if err := json.Unmarshal(payload, &rec.Payload); err != nil {
		return nil, fmt.Errorf("%w: decode payload %s: %v", common.ErrLocalPersistence, key, err)
	}
	if err := json.Unmarshal(attachments, &rec.Attachments); err != nil {
		return nil, fmt.Errorf("%w: decode attachments %s: %v", common.ErrLocalPersistence, key, err)
	}
	if err := json.Unmarshal(completed, &rec.Completed); err != nil {
		return nil, fmt.Errorf("%w: decode completed %s: %v", common.ErrLocalPersistence, key, err)
	}
	return rec, nil
}

// Put upserts the whole record under key. On conflict every column is
// replaced; there is no field-level patching.
func (r *SQLiteRepository) Put(ctx context.Context, key string, record *models.DraftRecord) error {
	payload, err := json.Marshal(record.Payload)
	if err != nil {
		return fmt.Errorf("%w: encode payload: %v", common.ErrLocalPersistence, err)
	}
	attachments, err := json.Marshal(record.Attachments)
	if err != nil {
		return fmt.Errorf("%w: encode attachments: %v", common.ErrLocalPersistence, err)
	}
	if record.Attachments == nil {
		attachments = []byte("[]")
	}
	completed, err := json.Marshal(record.Completed)
	if err != nil {
		return fmt.Errorf("%w: encode completed: %v", common.ErrLocalPersistence, err)
	}
	if record.Completed == nil {
		completed = []byte("{}")
	}

	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	query := `INSERT INTO drafts (key, payload, attachments, completed, remote_record_id, owner_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload,
			attachments = excluded.attachments,
			completed = excluded.completed,
			remote_record_id = excluded.remote_record_id,
			owner_id = excluded.owner_id,
			updated_at = excluded.updated_at`
	_, err = r.db.ExecContext(ctx, query,
		key, payload, attachments, completed, record.RemoteRecordID, record.OwnerID, updatedAt.Unix())
	if err != nil {
		return fmt.Errorf("%w: put draft %s: %v", common.ErrLocalPersistence, key, err)
	}
	return nil
}

// Delete removes the draft under key; absent keys are a no-op.
func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("%w: delete draft %s: %v", common.ErrLocalPersistence, key, err)
	}
	return nil
}

// escapeLike escapes LIKE metacharacters so a key prefix full of
// underscores matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// ListKeys returns keys matching prefix, most recently updated first.
func (r *SQLiteRepository) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	query := `SELECT key FROM drafts WHERE key LIKE ? ESCAPE '\' ORDER BY updated_at DESC, key`
	rows, err := r.db.QueryContext(ctx, query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("%w: list drafts %s*: %v", common.ErrLocalPersistence, prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%w: scan draft key: %v", common.ErrLocalPersistence, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate draft keys: %v", common.ErrLocalPersistence, err)
	}
	return keys, nil
}

// CountKeys returns the number of stored drafts matching prefix.
func (r *SQLiteRepository) CountKeys(ctx context.Context, prefix string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM drafts WHERE key LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: count drafts %s*: %v", common.ErrLocalPersistence, prefix, err)
	}
	return n, nil
}
