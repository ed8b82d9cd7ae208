package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fieldworks/fieldsync/internal/client/client"
	"github.com/fieldworks/fieldsync/internal/client/media"
	"github.com/fieldworks/fieldsync/internal/client/models"
	"github.com/fieldworks/fieldsync/internal/client/repositories/drafts"
	"github.com/fieldworks/fieldsync/internal/common"
	"github.com/fieldworks/fieldsync/internal/logging"
)

// Session is a hydrated working copy of one draft, ready for editing.
type Session struct {
	Key    models.DraftKey
	Record *models.DraftRecord
	Phase  models.DraftPhase

	// StartedFresh is true when no usable prior draft existed: either none
	// was stored, or the ownership guard refused it (in which case none of
	// the other owner's data is exposed).
	StartedFresh bool

	// Conflicts lists sections where server and local both held different
	// non-empty values during hydration; the server value was taken.
	Conflicts []string
}

// SaveOutcome reports how far an interim save got. The local write is the
// hard requirement; the remote upsert is best-effort and its failure only
// downgrades the user-facing message from "synced" to "saved locally only".
type SaveOutcome struct {
	RemoteSynced   bool
	RemoteRecordID string

	// RemoteErr is the non-fatal error of the best-effort upsert, nil on
	// success. Batch sync inspects it for unreachability.
	RemoteErr error
}

// PhaseError tags a failure with the phase the operation stopped in, so
// callers can tell an upload failure from a remote upsert failure without
// string matching. Sentinel matching still works through Unwrap.
type PhaseError struct {
	Phase models.DraftPhase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

func phaseErr(phase models.DraftPhase, err error) error {
	return &PhaseError{Phase: phase, Err: err}
}

// SweepResult summarizes one opportunistic batch sync pass.
type SweepResult struct {
	Synced  int
	Skipped int // ownership guard refused, or key unparsable
	Failed  int
	// Aborted is true when the sweep stopped early on an unreachable
	// network: unreachability applies to every remaining key too.
	Aborted bool
}

// SyncService drives the end-to-end draft flow: hydrate, save, submit, and
// the opportunistic batch sweep. All I/O is sequential; a draft key is only
// ever worked on by one call at a time (the screen lifecycle serializes
// access), so the service needs no locking.
type SyncService interface {
	Resume(ctx context.Context, key models.DraftKey, actorID string) (*Session, error)
	SaveDraft(ctx context.Context, key models.DraftKey, record *models.DraftRecord, actorID string) (*SaveOutcome, error)
	Submit(ctx context.Context, key models.DraftKey, record *models.DraftRecord, actorID string) error
	SaveSection(ctx context.Context, key models.DraftKey, record *models.DraftRecord, kind models.SectionKind, actorID string) error
	SyncAll(ctx context.Context, actorID string) (*SweepResult, error)
}

type syncService struct {
	drafts   drafts.Repository
	gw       client.Gateway
	uploader media.Uploader
	log      logging.Logger
}

func NewSyncService(draftRepo drafts.Repository, gw client.Gateway, uploader media.Uploader, log logging.Logger) SyncService {
	return &syncService{drafts: draftRepo, gw: gw, uploader: uploader, log: log}
}

// Resume loads the stored draft (if the guard allows it), fetches the
// remote record when one is known, and hydrates a working copy in the local
// editing shape. A remote "not found" just means there is nothing to
// hydrate from; an unreachable server degrades to local-only hydration so
// resuming keeps working offline.
func (s *syncService) Resume(ctx context.Context, key models.DraftKey, actorID string) (*Session, error) {
	session := &Session{Key: key, Phase: models.PhaseHydrating}

	stored, err := s.drafts.Get(ctx, key.String())
	if err != nil {
		return nil, phaseErr(models.PhaseHydrating, err)
	}

	if stored != nil && !MayContinue(stored, actorID) {
		s.log.Warn(ctx, "draft belongs to another technician, starting fresh",
			"key", key.String(), "owner", stored.OwnerID, "actor", actorID)
		stored = nil
	}

	remoteID := s.remoteID(key, stored)
	var remote *models.RemoteRecord
	if remoteID != "" {
		remote, err = s.gw.Fetch(ctx, remoteID)
		switch {
		case errors.Is(err, common.ErrNotFound):
			// No existing remote record: submit will fall back to create.
			remote = nil
			remoteID = ""
		case errors.Is(err, client.ErrUnavailable):
			s.log.Warn(ctx, "server unreachable, hydrating from local draft only", "key", key.String())
			remote = nil
		case err != nil:
			return nil, phaseErr(models.PhaseHydrating, err)
		}
	}

	record := stored
	if record == nil {
		session.StartedFresh = true
		record = &models.DraftRecord{Payload: models.Payload{}, OwnerID: actorID}
	}
	if remoteID != "" && record.RemoteRecordID == "" {
		record.RemoteRecordID = remoteID
	}

	if remote != nil {
		serverLocal := hydrationPayload(remote)
		merged, conflicts := MergePayloads(serverLocal, record.Payload)
		record.Payload = merged
		session.Conflicts = conflicts
		if len(conflicts) > 0 {
			s.log.Warn(ctx, "local sections differ from server, server values taken",
				"key", key.String(), "sections", conflicts)
		}
	}

	session.Record = record
	session.Phase = models.PhaseEditing
	return session, nil
}

// hydrationPayload flattens a remote record into the local editing shape:
// the whole-form payload plus the first check of each equipment section's
// check list. Check lists that do not name a known equipment section are
// ignored.
func hydrationPayload(remote *models.RemoteRecord) models.Payload {
	out := models.PayloadToLocal(remote.Payload)
	if out == nil {
		out = models.Payload{}
	}
	for checkKey := range remote.EquipmentChecks {
		kind, ok := models.SectionFromCheckKey(checkKey)
		if !ok || !kind.IsEquipment() {
			continue
		}
		if raw, ok := out[string(kind)]; ok && !models.IsEmptyValue(raw) {
			continue
		}
		check := remote.CheckAt(kind, 0)
		if check == nil {
			continue
		}
		section, err := models.CheckToLocal(kind, check)
		if err != nil || len(section) == 0 {
			continue
		}
		b, err := json.Marshal(section)
		if err != nil {
			continue
		}
		out[string(kind)] = b
	}
	return out
}

func (s *syncService) remoteID(key models.DraftKey, stored *models.DraftRecord) string {
	if stored != nil && stored.RemoteRecordID != "" {
		return stored.RemoteRecordID
	}
	if !key.IsAdhoc() {
		return key.RecordID
	}
	return ""
}

// SaveDraft is the interim save: upload attachments, persist locally with
// the uploaded URLs substituted (so the next save does not re-upload), then
// best-effort upsert to the server. The local write is what the user's
// "Draft Saved" confirmation hangs on; a remote failure never blocks it.
func (s *syncService) SaveDraft(ctx context.Context, key models.DraftKey, record *models.DraftRecord, actorID string) (*SaveOutcome, error) {
	if err := s.guardStored(ctx, key, actorID); err != nil {
		return nil, err
	}

	uploaded, err := s.uploader.Upload(ctx, record.Attachments)
	if err != nil {
		return nil, phaseErr(models.PhaseUploading, err)
	}

	saved := record.Clone()
	saved.Attachments = uploaded
	if saved.OwnerID == "" {
		saved.OwnerID = actorID
	}
	saved.UpdatedAt = time.Now()

	if err := s.drafts.Put(ctx, key.String(), saved); err != nil {
		return nil, phaseErr(models.PhasePersisting, err)
	}

	outcome := &SaveOutcome{RemoteRecordID: saved.RemoteRecordID}

	remoteID, err := client.Upsert(ctx, s.gw, s.remoteID(key, saved), models.PayloadToWire(saved.Payload))
	if err != nil {
		s.log.Warn(ctx, "remote sync failed, draft saved locally only", "key", key.String(), "error", err)
		outcome.RemoteErr = phaseErr(models.PhaseUpserting, err)
		*record = *saved
		return outcome, nil
	}

	// Remember the server id so later saves update instead of create.
	// The local copy is retained: until final submission it stays the
	// source of truth.
	if saved.RemoteRecordID != remoteID {
		saved.RemoteRecordID = remoteID
		if err := s.drafts.Put(ctx, key.String(), saved); err != nil {
			return nil, phaseErr(models.PhasePersisting, err)
		}
	}

	outcome.RemoteSynced = true
	outcome.RemoteRecordID = remoteID
	*record = *saved
	return outcome, nil
}

// SaveSection incrementally syncs a single equipment-check section to the
// server. The local draft is persisted first; the section patch is
// best-effort in the same way SaveDraft's upsert is, but requires a known
// remote record. Sections outside equipment_checks have no incremental
// channel; for them the whole-form upsert inside SaveDraft is all there is.
func (s *syncService) SaveSection(ctx context.Context, key models.DraftKey, record *models.DraftRecord, kind models.SectionKind, actorID string) error {
	outcome, err := s.SaveDraft(ctx, key, record, actorID)
	if err != nil {
		return err
	}
	if !kind.IsEquipment() || outcome.RemoteErr != nil || outcome.RemoteRecordID == "" {
		return nil
	}

	section, err := record.Payload.Section(kind)
	if err != nil {
		return err
	}
	wire := models.SectionToWire(kind, section)
	if err := s.gw.PatchSection(ctx, outcome.RemoteRecordID, kind.CheckKey(), wire); err != nil {
		s.log.Warn(ctx, "section patch failed", "key", key.String(), "section", kind, "error", err)
	}
	return nil
}

// Submit is the final promotion of a draft to a submitted record:
// validate, upload, merge against the server's current state, upsert, and
// only then delete the local draft — exactly once, and only on confirmed
// success. Any failure leaves the draft untouched so the user can retry.
func (s *syncService) Submit(ctx context.Context, key models.DraftKey, record *models.DraftRecord, actorID string) error {
	if err := s.guardStored(ctx, key, actorID); err != nil {
		return err
	}

	// Validating: no side effects on failure.
	completed, err := ValidateSections(record.Payload)
	if err != nil {
		return phaseErr(models.PhaseValidating, err)
	}

	// Uploading.
	uploaded, err := s.uploader.Upload(ctx, record.Attachments)
	if err != nil {
		return phaseErr(models.PhaseUploading, err)
	}

	// Merging: reconcile with sections already accepted by the server in
	// earlier sessions, so they are not clobbered.
	effective := record.Payload
	remoteID := s.remoteID(key, record)
	if remoteID != "" {
		remote, err := s.gw.Fetch(ctx, remoteID)
		switch {
		case errors.Is(err, common.ErrNotFound):
			remoteID = ""
		case err != nil:
			return phaseErr(models.PhaseMerging, err)
		default:
			var conflicts []string
			effective, conflicts = MergePayloads(hydrationPayload(remote), record.Payload)
			if len(conflicts) > 0 {
				s.log.Warn(ctx, "submit merged diverged sections, server values taken",
					"key", key.String(), "sections", conflicts)
			}
		}
	}

	// Upserting.
	wire := models.PayloadToWire(effective)
	attachmentsJSON, err := json.Marshal(uploaded)
	if err != nil {
		return phaseErr(models.PhaseUpserting, fmt.Errorf("encoding attachments: %w", err))
	}
	wire["attachments"] = attachmentsJSON
	completedJSON, err := json.Marshal(completed)
	if err != nil {
		return phaseErr(models.PhaseUpserting, fmt.Errorf("encoding completed flags: %w", err))
	}
	wire["completed_sections"] = completedJSON
	wire["status"] = json.RawMessage(`"submitted"`)

	newID, err := client.Upsert(ctx, s.gw, remoteID, wire)
	if err != nil {
		return phaseErr(models.PhaseUpserting, err)
	}

	s.log.Info(ctx, "draft submitted", "key", key.String(), "record_id", newID)

	// Confirmed success: clear the local draft.
	if err := s.drafts.Delete(ctx, key.String()); err != nil {
		return phaseErr(models.PhasePersisting, err)
	}
	return nil
}

// guardStored re-checks ownership against the draft currently on disk, the
// one a save would overwrite.
func (s *syncService) guardStored(ctx context.Context, key models.DraftKey, actorID string) error {
	stored, err := s.drafts.Get(ctx, key.String())
	if err != nil {
		return err
	}
	if !MayContinue(stored, actorID) {
		return fmt.Errorf("%w: draft %s belongs to %s", common.ErrOwnershipRejected, key.String(), stored.OwnerID)
	}
	return nil
}

// SyncAll opportunistically reconciles every locally stored draft, one key
// at a time, fully resolving each before the next. Drafts owned by another
// technician are skipped entirely. An unreachable network aborts the
// remaining sweep: it would fail for every subsequent key too.
func (s *syncService) SyncAll(ctx context.Context, actorID string) (*SweepResult, error) {
	keys, err := s.drafts.ListKeys(ctx, "")
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}
	for _, rawKey := range keys {
		stored, err := s.drafts.Get(ctx, rawKey)
		if err != nil {
			return result, err
		}
		if stored == nil {
			continue
		}
		if !MayContinue(stored, actorID) {
			s.log.Info(ctx, "skipping draft owned by another technician", "key", rawKey)
			result.Skipped++
			continue
		}

		key, err := models.ParseKey(rawKey)
		if err != nil {
			s.log.Warn(ctx, "skipping unparsable draft key", "key", rawKey)
			result.Skipped++
			continue
		}

		outcome, err := s.SaveDraft(ctx, key, stored, actorID)
		if err != nil {
			if errors.Is(err, client.ErrUnavailable) {
				result.Aborted = true
				return result, nil
			}
			result.Failed++
			continue
		}
		if outcome.RemoteErr != nil {
			if errors.Is(outcome.RemoteErr, client.ErrUnavailable) {
				result.Aborted = true
				return result, nil
			}
			result.Failed++
			continue
		}
		result.Synced++
	}
	return result, nil
}
