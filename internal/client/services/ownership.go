// Package services contains the application services of the fieldsync
// client: the ownership guard, the merge resolver, section validation, and
// the sync orchestrator that drives the draft lifecycle end to end.
package services

import "github.com/fieldworks/fieldsync/internal/client/models"

// MayContinue decides whether the current actor may resume or overwrite a
// persisted draft.
//
// The guard is permissive for legacy and unauthenticated contexts: a draft
// with no recorded owner, or an unknown current actor, may always be
// continued. It refuses only when both ids are known and differ — resuming
// someone else's unsynced draft, or reusing a remote record id captured
// under a different identity, must not happen silently.
//
// This is an advisory gate, not a lock: it is re-checked at every resume
// and every save, never held for a session.
func MayContinue(draft *models.DraftRecord, actorID string) bool {
	if draft == nil {
		return true
	}
	if draft.OwnerID == "" || actorID == "" {
		return true
	}
	return draft.OwnerID == actorID
}
