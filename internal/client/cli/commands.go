package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fieldworks/fieldsync/internal/client/models"
	"github.com/fieldworks/fieldsync/internal/client/repositories/metadata"
	"github.com/fieldworks/fieldsync/internal/client/services"
	"github.com/fieldworks/fieldsync/internal/common"
)

// Sites lists the records assigned to the technician, one row per record.
func (a *App) Sites(ctx context.Context) error {
	records, err := a.gw.ListAssigned(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	if len(records) == 0 {
		fmt.Println("No assigned records")
		return nil
	}
	for _, r := range records {
		name := r.SiteName
		if name == "" {
			name = r.SiteID
		}
		fmt.Printf("%s  %-12s %-10s %s\n", r.ID, r.Kind, r.Status, name)
	}
	return nil
}

// Drafts lists locally stored drafts: key, sync hint and, for drafts carrying
// section scores, the running total.
func (a *App) Drafts(ctx context.Context) error {
	keys, err := a.repos.Drafts.ListKeys(ctx, "")
	if err != nil {
		log.Println(err.Error())
		return err
	}
	if len(keys) == 0 {
		fmt.Println("No drafts")
		return nil
	}

	for _, key := range keys {
		rec, err := a.repos.Drafts.Get(ctx, key)
		if err != nil || rec == nil {
			continue
		}
		line := fmt.Sprintf("%s  [%s]", key, rec.SyncState())
		if scores, err := models.ScoresFromPayload(rec.Payload); err == nil && len(scores) > 0 {
			line += "  score " + scores.TotalString()
		}
		fmt.Println(line)
	}

	total, err := a.repos.Drafts.CountKeys(ctx, "")
	if err == nil {
		fmt.Printf("%d draft(s)\n", total)
	}
	return nil
}

// Resume opens a draft for editing. Accepts either a stored key
// ("maintenance_equipment_S1_M1") or its parts:
//
//	resume <kind> <form> <siteId> [recordId]
func (a *App) Resume(ctx context.Context, args []string) error {
	var key models.DraftKey
	var err error

	switch len(args) {
	case 1:
		key, err = models.ParseKey(args[0])
		if err != nil {
			log.Println(err.Error())
			return err
		}
	case 3, 4:
		recordID := ""
		if len(args) == 4 {
			recordID = args[3]
		}
		key = models.NewDraftKey(models.FormKind(args[0]), args[1], args[2], recordID)
	default:
		fmt.Println("Usage: resume <key> | resume <kind> <form> <siteId> [recordId]")
		return nil
	}

	session, err := a.sync.Resume(ctx, key, a.actorID)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	a.session = session

	if session.StartedFresh {
		fmt.Println("Started a new draft for", key.String())
	} else {
		fmt.Println("Resumed draft", key.String())
	}
	for _, section := range session.Conflicts {
		fmt.Printf("warning: section %s had newer server data, server values taken\n", section)
	}
	return nil
}

// Set writes one field of the open draft: set <section> <field> <value>.
// Values are taken as JSON when valid ("true", "12.5", "null") and as plain
// strings otherwise.
func (a *App) Set(ctx context.Context, args []string) error {
	if a.session == nil {
		fmt.Println("No open draft; use 'resume' first")
		return nil
	}
	if len(args) < 3 {
		fmt.Println("Usage: set <section> <field> <value>")
		return nil
	}

	action := models.SetField{
		Section: models.SectionKind(args[0]),
		Field:   args[1],
		Value:   parseFieldValue(strings.Join(args[2:], " ")),
	}

	updated, err := models.ApplyUpdate(a.session.Record.Payload, action)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	a.session.Record.Payload = updated
	return nil
}

// Edit reads field assignments ("section.field=value") until an empty line
// and applies them in order to the open draft.
func (a *App) Edit(ctx context.Context) error {
	if a.session == nil {
		fmt.Println("No open draft; use 'resume' first")
		return nil
	}

	lines, err := GetAssignments(a.reader)
	if err != nil {
		return err
	}

	for _, line := range lines {
		path, value, ok := strings.Cut(line, "=")
		if !ok {
			fmt.Println("Skipping malformed line:", line)
			continue
		}
		section, field, ok := strings.Cut(strings.TrimSpace(path), ".")
		if !ok {
			fmt.Println("Skipping malformed path:", path)
			continue
		}

		action := models.SetField{
			Section: models.SectionKind(section),
			Field:   field,
			Value:   parseFieldValue(strings.TrimSpace(value)),
		}
		updated, err := models.ApplyUpdate(a.session.Record.Payload, action)
		if err != nil {
			log.Println(err.Error())
			continue
		}
		a.session.Record.Payload = updated
	}
	return nil
}

// Attach adds a photo to the open draft: attach <section> <path>.
func (a *App) Attach(ctx context.Context, args []string) error {
	if a.session == nil {
		fmt.Println("No open draft; use 'resume' first")
		return nil
	}
	if len(args) != 2 {
		fmt.Println("Usage: attach <section> <path>")
		return nil
	}

	a.session.Record.Attachments = append(a.session.Record.Attachments, models.PhotoAttachment{
		LocalRef:   args[1],
		SectionTag: args[0],
	})
	fmt.Println("Attached", args[1])
	return nil
}

// Show prints the open draft's payload and attachments.
func (a *App) Show(ctx context.Context) error {
	if a.session == nil {
		fmt.Println("No open draft; use 'resume' first")
		return nil
	}

	b, err := json.MarshalIndent(a.session.Record.Payload, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))

	for _, att := range a.session.Record.Attachments {
		mark := "pending"
		if att.Uploaded() {
			mark = att.RemoteURL
		}
		fmt.Printf("photo %s (%s): %s\n", att.LocalRef, att.SectionTag, mark)
	}
	return nil
}

// Save persists the open draft locally and syncs it to the server on a
// best-effort basis.
func (a *App) Save(ctx context.Context) error {
	if a.session == nil {
		fmt.Println("No open draft; use 'resume' first")
		return nil
	}

	outcome, err := a.sync.SaveDraft(ctx, a.session.Key, a.session.Record, a.actorID)
	if err != nil {
		if errors.Is(err, common.ErrOwnershipRejected) {
			fmt.Println("This draft belongs to another technician and was not saved")
		} else {
			log.Println(err.Error())
		}
		return err
	}

	if outcome.RemoteSynced {
		fmt.Println("Draft saved and synced")
	} else {
		fmt.Println("Draft saved locally only (server unavailable)")
	}
	return nil
}

// Submit validates and finally submits the open draft. On success the local
// draft is gone and the session is closed.
func (a *App) Submit(ctx context.Context) error {
	if a.session == nil {
		fmt.Println("No open draft; use 'resume' first")
		return nil
	}

	err := a.sync.Submit(ctx, a.session.Key, a.session.Record, a.actorID)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			fmt.Println(err.Error())
		} else {
			log.Println(err.Error())
		}
		return err
	}

	fmt.Println("Submitted", a.session.Key.String())
	a.session = nil
	return nil
}

// SyncAll runs the opportunistic batch sweep over every stored draft.
func (a *App) SyncAll(ctx context.Context) error {
	result, err := a.sync.SyncAll(ctx, a.actorID)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Printf("Synced %d, skipped %d, failed %d\n", result.Synced, result.Skipped, result.Failed)
	if result.Aborted {
		fmt.Println("Sweep aborted: server unreachable")
		return nil
	}

	stamp := time.Now().UTC().Format(time.RFC3339)
	if err := a.repos.Metadata.Set(ctx, metadata.KeyLastSyncAt, []byte(stamp)); err != nil {
		log.Println(err.Error())
	}
	return nil
}

// parseFieldValue interprets user input as raw JSON when valid and as a JSON
// string otherwise, so "true" stays a boolean and "needs cleanup" becomes a
// string without quoting gymnastics.
func parseFieldValue(s string) json.RawMessage {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return json.RawMessage("null")
	}
	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(trimmed)
	return quoted
}
