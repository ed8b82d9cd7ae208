package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/fieldworks/fieldsync/internal/client/client"
	"github.com/fieldworks/fieldsync/internal/client/models"
	"github.com/fieldworks/fieldsync/internal/common"
	"github.com/fieldworks/fieldsync/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDrafts struct {
	store   map[string]*models.DraftRecord
	order   []string
	puts    int
	deletes int
}

func newFakeDrafts() *fakeDrafts {
	return &fakeDrafts{store: map[string]*models.DraftRecord{}}
}

func (f *fakeDrafts) Get(_ context.Context, key string) (*models.DraftRecord, error) {
	rec, ok := f.store[key]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

func (f *fakeDrafts) Put(_ context.Context, key string, record *models.DraftRecord) error {
	if _, ok := f.store[key]; !ok {
		f.order = append(f.order, key)
	}
	f.store[key] = record.Clone()
	f.puts++
	return nil
}

func (f *fakeDrafts) Delete(_ context.Context, key string) error {
	delete(f.store, key)
	f.deletes++
	return nil
}

func (f *fakeDrafts) ListKeys(_ context.Context, prefix string) ([]string, error) {
	var out []string
	for _, k := range f.order {
		if _, ok := f.store[k]; ok && strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeDrafts) CountKeys(ctx context.Context, prefix string) (int, error) {
	keys, err := f.ListKeys(ctx, prefix)
	return len(keys), err
}

type fakeGateway struct {
	client.Gateway

	fetchFn  func(recordID string) (*models.RemoteRecord, error)
	createFn func(payload models.Payload) (string, error)
	updateFn func(recordID string, payload models.Payload) error

	fetches, creates, updates, patches int
	lastPayload                        models.Payload
	lastCheckKey                       string
}

func (f *fakeGateway) Fetch(_ context.Context, recordID string) (*models.RemoteRecord, error) {
	f.fetches++
	if f.fetchFn == nil {
		return nil, common.ErrNotFound
	}
	return f.fetchFn(recordID)
}

func (f *fakeGateway) Create(_ context.Context, payload models.Payload) (string, error) {
	f.creates++
	f.lastPayload = payload
	if f.createFn == nil {
		return "R-NEW", nil
	}
	return f.createFn(payload)
}

func (f *fakeGateway) Update(_ context.Context, recordID string, payload models.Payload) error {
	f.updates++
	f.lastPayload = payload
	if f.updateFn == nil {
		return nil
	}
	return f.updateFn(recordID, payload)
}

func (f *fakeGateway) PatchSection(_ context.Context, _, checkKey string, _ map[string]json.RawMessage) error {
	f.patches++
	f.lastCheckKey = checkKey
	return nil
}

type fakeUploader struct {
	err   error
	calls int
}

func (f *fakeUploader) Upload(_ context.Context, attachments []models.PhotoAttachment) ([]models.PhotoAttachment, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := append([]models.PhotoAttachment(nil), attachments...)
	for i, a := range out {
		if !a.Uploaded() {
			out[i].RemoteURL = "https://cdn.local/" + a.LocalRef
		}
	}
	return out, nil
}

func nopLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testService(repo *fakeDrafts, gw *fakeGateway, up *fakeUploader) SyncService {
	return NewSyncService(repo, gw, up, nopLogger())
}

func maintKey(recordID string) models.DraftKey {
	return models.NewDraftKey(models.FormKindMaintenance, "equipment", "S1", recordID)
}

func TestResume_FreshDraftHydratesFromRemoteChecks(t *testing.T) {
	repo := newFakeDrafts()
	gw := &fakeGateway{fetchFn: func(recordID string) (*models.RemoteRecord, error) {
		require.Equal(t, "M1", recordID)
		return &models.RemoteRecord{
			ID:      "M1",
			Payload: models.Payload{"janitorial": raw(`{"site_clean":true}`)},
			EquipmentChecks: map[string][]json.RawMessage{
				"generator_checks": {raw(`{"battery_status":true,"door_status":false}`)},
			},
		}, nil
	}}
	svc := testService(repo, gw, &fakeUploader{})

	session, err := svc.Resume(context.Background(), maintKey("M1"), "tech-1")
	require.NoError(t, err)
	assert.True(t, session.StartedFresh)
	assert.Equal(t, models.PhaseEditing, session.Phase)
	assert.Equal(t, "M1", session.Record.RemoteRecordID)

	gen, err := session.Record.Payload.Section(models.SectionGenerator)
	require.NoError(t, err)
	assert.Equal(t, raw(`true`), gen["batteryStatus"])
	assert.Equal(t, raw(`false`), gen["doorStatus"])

	jan, err := session.Record.Payload.Section(models.SectionJanitorial)
	require.NoError(t, err)
	assert.Equal(t, raw(`true`), jan["siteClean"])
}

func TestResume_ForeignDraftStartsFresh(t *testing.T) {
	repo := newFakeDrafts()
	key := maintKey("")
	require.NoError(t, repo.Put(context.Background(), key.String(), &models.DraftRecord{
		Payload: models.Payload{"general": raw(`{"notes":"private"}`)},
		OwnerID: "tech-2",
	}))
	svc := testService(repo, &fakeGateway{}, &fakeUploader{})

	session, err := svc.Resume(context.Background(), key, "tech-1")
	require.NoError(t, err)
	assert.True(t, session.StartedFresh)
	assert.Empty(t, session.Record.Payload, "another technician's answers must not leak")
	assert.Equal(t, "tech-1", session.Record.OwnerID)
}

func TestResume_UnreachableServerHydratesLocally(t *testing.T) {
	repo := newFakeDrafts()
	key := maintKey("M1")
	stored := &models.DraftRecord{
		Payload:        models.Payload{"battery": raw(`{"voltageDC":53.4}`)},
		RemoteRecordID: "M1",
		OwnerID:        "tech-1",
	}
	require.NoError(t, repo.Put(context.Background(), key.String(), stored))

	gw := &fakeGateway{fetchFn: func(string) (*models.RemoteRecord, error) {
		return nil, client.ErrUnavailable
	}}
	svc := testService(repo, gw, &fakeUploader{})

	session, err := svc.Resume(context.Background(), key, "tech-1")
	require.NoError(t, err)
	assert.False(t, session.StartedFresh)
	assert.Equal(t, stored.Payload, session.Record.Payload)
	assert.Empty(t, session.Conflicts)
}

func TestResume_ServerWinsOnDivergedSection(t *testing.T) {
	repo := newFakeDrafts()
	key := maintKey("M1")
	require.NoError(t, repo.Put(context.Background(), key.String(), &models.DraftRecord{
		Payload:        models.Payload{"generator": raw(`{"runtimeHours":120}`)},
		RemoteRecordID: "M1",
		OwnerID:        "tech-1",
	}))

	gw := &fakeGateway{fetchFn: func(string) (*models.RemoteRecord, error) {
		return &models.RemoteRecord{
			ID:      "M1",
			Payload: models.Payload{"generator": raw(`{"runtime_hours":130}`)},
		}, nil
	}}
	svc := testService(repo, gw, &fakeUploader{})

	session, err := svc.Resume(context.Background(), key, "tech-1")
	require.NoError(t, err)
	require.Equal(t, []string{"generator"}, session.Conflicts)

	gen, err := session.Record.Payload.Section(models.SectionGenerator)
	require.NoError(t, err)
	assert.Equal(t, raw(`130`), gen["runtimeHours"])
}

func TestSaveDraft_PersistsLocallyThenSyncs(t *testing.T) {
	repo := newFakeDrafts()
	gw := &fakeGateway{createFn: func(models.Payload) (string, error) { return "M9", nil }}
	svc := testService(repo, gw, &fakeUploader{})

	key := maintKey("")
	record := &models.DraftRecord{
		Payload:     models.Payload{"battery": raw(`{"voltageDC":53.4}`)},
		Attachments: []models.PhotoAttachment{{LocalRef: "b.jpg", SectionTag: "battery"}},
	}

	outcome, err := svc.SaveDraft(context.Background(), key, record, "tech-1")
	require.NoError(t, err)
	assert.True(t, outcome.RemoteSynced)
	assert.Equal(t, "M9", outcome.RemoteRecordID)

	stored, err := repo.Get(context.Background(), key.String())
	require.NoError(t, err)
	require.NotNil(t, stored, "local draft retained after interim save")
	assert.Equal(t, "M9", stored.RemoteRecordID)
	assert.Equal(t, "tech-1", stored.OwnerID)
	assert.Equal(t, "https://cdn.local/b.jpg", stored.Attachments[0].RemoteURL)

	// Wire payload is snake_case.
	assert.Contains(t, string(gw.lastPayload["battery"]), "voltage_dc")
}

func TestSaveDraft_RemoteFailureStillSavesLocally(t *testing.T) {
	repo := newFakeDrafts()
	gw := &fakeGateway{updateFn: func(string, models.Payload) error {
		return client.ErrUnavailable
	}}
	svc := testService(repo, gw, &fakeUploader{})

	key := maintKey("M1")
	record := &models.DraftRecord{
		Payload: models.Payload{"battery": raw(`{"voltageDC":53.4}`)},
		OwnerID: "tech-1",
	}

	outcome, err := svc.SaveDraft(context.Background(), key, record, "tech-1")
	require.NoError(t, err, "a remote failure must not fail the save")
	assert.False(t, outcome.RemoteSynced)
	assert.ErrorIs(t, outcome.RemoteErr, client.ErrUnavailable)

	var phErr *PhaseError
	require.ErrorAs(t, outcome.RemoteErr, &phErr)
	assert.Equal(t, models.PhaseUpserting, phErr.Phase)

	stored, err := repo.Get(context.Background(), key.String())
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestSaveDraft_UploadFailureAbortsBeforeAnyWrite(t *testing.T) {
	repo := newFakeDrafts()
	gw := &fakeGateway{}
	svc := testService(repo, gw, &fakeUploader{err: errors.New("attachment upload failed")})

	key := maintKey("")
	record := &models.DraftRecord{
		Payload:     models.Payload{"battery": raw(`{"voltageDC":53.4}`)},
		Attachments: []models.PhotoAttachment{{LocalRef: "b.jpg"}},
	}

	_, err := svc.SaveDraft(context.Background(), key, record, "tech-1")
	require.Error(t, err)
	assert.Zero(t, repo.puts)
	assert.Zero(t, gw.creates)
}

func TestSaveDraft_ForeignStoredDraftRejected(t *testing.T) {
	repo := newFakeDrafts()
	key := maintKey("")
	require.NoError(t, repo.Put(context.Background(), key.String(), &models.DraftRecord{
		Payload: models.Payload{"general": raw(`{"notes":"x"}`)},
		OwnerID: "tech-2",
	}))
	up := &fakeUploader{}
	svc := testService(repo, &fakeGateway{}, up)

	_, err := svc.SaveDraft(context.Background(), key, &models.DraftRecord{
		Payload: models.Payload{"general": raw(`{"notes":"y"}`)},
	}, "tech-1")
	assert.ErrorIs(t, err, common.ErrOwnershipRejected)
	assert.Zero(t, up.calls)
}

func TestSaveDraft_OwnershipFallbackAdoptsNewRecordID(t *testing.T) {
	repo := newFakeDrafts()
	gw := &fakeGateway{
		updateFn: func(string, models.Payload) error { return common.ErrOwnershipRejected },
		createFn: func(models.Payload) (string, error) { return "M2", nil },
	}
	svc := testService(repo, gw, &fakeUploader{})

	key := maintKey("M1")
	record := &models.DraftRecord{
		Payload:        models.Payload{"battery": raw(`{"voltageDC":53.4}`)},
		RemoteRecordID: "M1",
		OwnerID:        "tech-1",
	}

	outcome, err := svc.SaveDraft(context.Background(), key, record, "tech-1")
	require.NoError(t, err)
	assert.Equal(t, "M2", outcome.RemoteRecordID)

	stored, _ := repo.Get(context.Background(), key.String())
	require.NotNil(t, stored)
	assert.Equal(t, "M2", stored.RemoteRecordID)
}

func TestSubmit_DeletesDraftExactlyOnce(t *testing.T) {
	repo := newFakeDrafts()
	key := maintKey("M1")
	record := &models.DraftRecord{
		Payload:        models.Payload{"fuel_tank": raw(`{"fuelLevelLiters":400,"leakDetected":false}`)},
		Attachments:    []models.PhotoAttachment{{LocalRef: "t.jpg", SectionTag: "fuel_tank"}},
		RemoteRecordID: "M1",
		OwnerID:        "tech-1",
	}
	require.NoError(t, repo.Put(context.Background(), key.String(), record))

	gw := &fakeGateway{fetchFn: func(string) (*models.RemoteRecord, error) {
		return &models.RemoteRecord{ID: "M1"}, nil
	}}
	svc := testService(repo, gw, &fakeUploader{})

	require.NoError(t, svc.Submit(context.Background(), key, record, "tech-1"))

	assert.Equal(t, 1, gw.updates)
	assert.Contains(t, string(gw.lastPayload["fuel_tank"]), "fuel_level_liters")
	assert.Equal(t, raw(`"submitted"`), gw.lastPayload["status"])
	assert.Contains(t, string(gw.lastPayload["attachments"]), "https://cdn.local/t.jpg")

	stored, err := repo.Get(context.Background(), key.String())
	require.NoError(t, err)
	assert.Nil(t, stored, "submitted draft is cleared")
	assert.Equal(t, 1, repo.deletes)
}

func TestSubmit_ValidationFailurePreservesDraft(t *testing.T) {
	repo := newFakeDrafts()
	key := maintKey("M1")
	record := &models.DraftRecord{
		Payload:        models.Payload{"grid": raw(`{"gridAvailable":true}`)},
		RemoteRecordID: "M1",
		OwnerID:        "tech-1",
	}
	require.NoError(t, repo.Put(context.Background(), key.String(), record))

	gw := &fakeGateway{}
	up := &fakeUploader{}
	svc := testService(repo, gw, up)

	err := svc.Submit(context.Background(), key, record, "tech-1")
	require.ErrorIs(t, err, ErrValidation)

	var phErr *PhaseError
	require.ErrorAs(t, err, &phErr)
	assert.Equal(t, models.PhaseValidating, phErr.Phase)

	assert.Zero(t, up.calls, "nothing uploaded for an invalid draft")
	assert.Zero(t, gw.updates+gw.creates+gw.fetches)

	stored, _ := repo.Get(context.Background(), key.String())
	assert.NotNil(t, stored)
	assert.Zero(t, repo.deletes)
}

func TestSubmit_UpsertFailurePreservesDraft(t *testing.T) {
	repo := newFakeDrafts()
	key := maintKey("M1")
	record := &models.DraftRecord{
		Payload:        models.Payload{"battery": raw(`{"voltageDC":53.4}`)},
		RemoteRecordID: "M1",
		OwnerID:        "tech-1",
	}
	require.NoError(t, repo.Put(context.Background(), key.String(), record))

	gw := &fakeGateway{
		fetchFn:  func(string) (*models.RemoteRecord, error) { return nil, common.ErrNotFound },
		createFn: func(models.Payload) (string, error) { return "", client.ErrUnavailable },
	}
	svc := testService(repo, gw, &fakeUploader{})

	err := svc.Submit(context.Background(), key, record, "tech-1")
	require.ErrorIs(t, err, client.ErrUnavailable)

	var phErr *PhaseError
	require.ErrorAs(t, err, &phErr)
	assert.Equal(t, models.PhaseUpserting, phErr.Phase)

	stored, _ := repo.Get(context.Background(), key.String())
	assert.NotNil(t, stored, "failed submit keeps the draft for retry")
}

func TestSubmit_UploadFailureTaggedWithPhase(t *testing.T) {
	repo := newFakeDrafts()
	key := maintKey("M1")
	record := &models.DraftRecord{
		Payload:        models.Payload{"battery": raw(`{"voltageDC":53.4}`)},
		Attachments:    []models.PhotoAttachment{{LocalRef: "b.jpg", SectionTag: "battery"}},
		RemoteRecordID: "M1",
		OwnerID:        "tech-1",
	}
	svc := testService(repo, &fakeGateway{}, &fakeUploader{err: errors.New("disk full")})

	err := svc.Submit(context.Background(), key, record, "tech-1")
	require.Error(t, err)

	var phErr *PhaseError
	require.ErrorAs(t, err, &phErr)
	assert.Equal(t, models.PhaseUploading, phErr.Phase)
}

func TestSubmit_MergesServerSyncedSections(t *testing.T) {
	repo := newFakeDrafts()
	key := maintKey("M1")
	record := &models.DraftRecord{
		Payload:        models.Payload{"battery": raw(`{"voltageDC":53.4}`)},
		RemoteRecordID: "M1",
		OwnerID:        "tech-1",
	}
	require.NoError(t, repo.Put(context.Background(), key.String(), record))

	// A previous session already synced the generator section server-side.
	gw := &fakeGateway{fetchFn: func(string) (*models.RemoteRecord, error) {
		return &models.RemoteRecord{
			ID: "M1",
			EquipmentChecks: map[string][]json.RawMessage{
				"generator_checks": {raw(`{"runtime_hours":1204,"battery_status":true,"current_phase_a":10,"current_phase_b":10,"current_phase_c":10,"voltage_phase_a":231,"voltage_phase_b":229,"voltage_phase_c":233}`)},
			},
		}, nil
	}}
	svc := testService(repo, gw, &fakeUploader{})

	require.NoError(t, svc.Submit(context.Background(), key, record, "tech-1"))

	sent := string(gw.lastPayload["generator"])
	assert.Contains(t, sent, "runtime_hours", "server-synced section survives the submit")
	assert.Contains(t, string(gw.lastPayload["battery"]), "voltage_dc")
}

func TestSaveSection_PatchesEquipmentCheck(t *testing.T) {
	repo := newFakeDrafts()
	gw := &fakeGateway{createFn: func(models.Payload) (string, error) { return "M5", nil }}
	svc := testService(repo, gw, &fakeUploader{})

	key := maintKey("")
	record := &models.DraftRecord{
		Payload: models.Payload{"generator": raw(`{"runtimeHours":120}`)},
	}

	require.NoError(t, svc.SaveSection(context.Background(), key, record, models.SectionGenerator, "tech-1"))
	assert.Equal(t, 1, gw.patches)
	assert.Equal(t, "generator_checks", gw.lastCheckKey)
}

func TestSaveSection_NonEquipmentSavesWithoutPatch(t *testing.T) {
	repo := newFakeDrafts()
	gw := &fakeGateway{createFn: func(models.Payload) (string, error) { return "M5", nil }}
	svc := testService(repo, gw, &fakeUploader{})

	key := maintKey("")
	record := &models.DraftRecord{
		Payload: models.Payload{"janitorial": raw(`{"siteClean":true}`)},
	}

	require.NoError(t, svc.SaveSection(context.Background(), key, record, models.SectionJanitorial, "tech-1"))
	assert.Equal(t, 1, gw.creates, "whole-form upsert still runs")
	assert.Zero(t, gw.patches, "no equipment_checks list to patch")
}

func TestResume_IgnoresUnknownCheckLists(t *testing.T) {
	repo := newFakeDrafts()
	gw := &fakeGateway{fetchFn: func(string) (*models.RemoteRecord, error) {
		return &models.RemoteRecord{
			ID: "M1",
			EquipmentChecks: map[string][]json.RawMessage{
				"generator_checks": {raw(`{"battery_status":true}`)},
				"turbine_checks":   {raw(`{"rpm":3000}`)},
			},
		}, nil
	}}
	svc := testService(repo, gw, &fakeUploader{})

	session, err := svc.Resume(context.Background(), maintKey("M1"), "tech-1")
	require.NoError(t, err)

	gen, err := session.Record.Payload.Section(models.SectionGenerator)
	require.NoError(t, err)
	assert.Equal(t, raw(`true`), gen["batteryStatus"])
	assert.NotContains(t, session.Record.Payload, "turbine")
}

func TestSyncAll_SkipsForeignAndCountsSynced(t *testing.T) {
	repo := newFakeDrafts()
	ctx := context.Background()
	own := &models.DraftRecord{Payload: models.Payload{"battery": raw(`{"voltageDC":53.4}`)}, OwnerID: "tech-1"}
	foreign := &models.DraftRecord{Payload: models.Payload{"battery": raw(`{"voltageDC":48.0}`)}, OwnerID: "tech-2"}
	require.NoError(t, repo.Put(ctx, "maintenance_equipment_S1_M1", own.Clone()))
	require.NoError(t, repo.Put(ctx, "maintenance_equipment_S2_adhoc", foreign))
	require.NoError(t, repo.Put(ctx, "audit_checklist_S3_adhoc", own.Clone()))

	gw := &fakeGateway{}
	svc := testService(repo, gw, &fakeUploader{})

	result, err := svc.SyncAll(ctx, "tech-1")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Synced)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.Failed)
	assert.False(t, result.Aborted)
}

func TestSyncAll_AbortsSweepWhenUnreachable(t *testing.T) {
	repo := newFakeDrafts()
	ctx := context.Background()
	own := &models.DraftRecord{Payload: models.Payload{"battery": raw(`{"voltageDC":53.4}`)}, OwnerID: "tech-1"}
	require.NoError(t, repo.Put(ctx, "maintenance_equipment_S1_adhoc", own.Clone()))
	require.NoError(t, repo.Put(ctx, "maintenance_equipment_S2_adhoc", own.Clone()))
	require.NoError(t, repo.Put(ctx, "maintenance_equipment_S3_adhoc", own.Clone()))

	gw := &fakeGateway{createFn: func(models.Payload) (string, error) {
		return "", client.ErrUnavailable
	}}
	svc := testService(repo, gw, &fakeUploader{})

	result, err := svc.SyncAll(ctx, "tech-1")
	require.NoError(t, err)
	assert.True(t, result.Aborted)
	assert.Zero(t, result.Synced)
	assert.Equal(t, 1, gw.creates, "remaining keys are not attempted against a dead network")
}

func TestSyncAll_CountsNonNetworkFailures(t *testing.T) {
	repo := newFakeDrafts()
	ctx := context.Background()
	own := &models.DraftRecord{Payload: models.Payload{"battery": raw(`{"voltageDC":53.4}`)}, OwnerID: "tech-1"}
	require.NoError(t, repo.Put(ctx, "maintenance_equipment_S1_adhoc", own.Clone()))
	require.NoError(t, repo.Put(ctx, "maintenance_equipment_S2_adhoc", own.Clone()))

	failed := false
	gw := &fakeGateway{createFn: func(models.Payload) (string, error) {
		if !failed {
			failed = true
			return "", errors.New("500: internal")
		}
		return "R2", nil
	}}
	svc := testService(repo, gw, &fakeUploader{})

	result, err := svc.SyncAll(ctx, "tech-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Synced)
	assert.False(t, result.Aborted)
}

func TestSyncAll_LegacyDraftSyncsInPlace(t *testing.T) {
	repo := newFakeDrafts()
	ctx := context.Background()
	legacyKey := models.LegacyAuditKey(models.FormKindAudit, "S1")
	require.NoError(t, repo.Put(ctx, legacyKey, &models.DraftRecord{
		Payload: models.Payload{"janitorial": raw(`{"siteClean":true}`)},
		OwnerID: "tech-1",
	}))

	gw := &fakeGateway{}
	svc := testService(repo, gw, &fakeUploader{})

	for i := 0; i < 2; i++ {
		result, err := svc.SyncAll(ctx, "tech-1")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Synced, "sweep %d", i+1)
	}

	keys, err := repo.ListKeys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{legacyKey}, keys, "legacy draft stays under its stored key")

	assert.Equal(t, 1, gw.creates, "first sweep creates the server record")
	assert.Equal(t, 1, gw.updates, "second sweep updates it instead of duplicating")

	stored, err := repo.Get(ctx, legacyKey)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "R-NEW", stored.RemoteRecordID, "server id remembered under the legacy key")
}
