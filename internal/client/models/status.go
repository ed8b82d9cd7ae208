package models

// DraftPhase names the steps of the orchestrator's per-draft state machine.
// Resume walks hydrating -> editing and records the phase on the session;
// save and submit walk the later phases and tag any failure with the phase
// it stopped in.
type DraftPhase string

const (
	PhaseHydrating  DraftPhase = "hydrating"
	PhaseEditing    DraftPhase = "editing"
	PhaseValidating DraftPhase = "validating"
	PhaseUploading  DraftPhase = "uploading"
	PhaseMerging    DraftPhase = "merging"
	PhaseUpserting  DraftPhase = "upserting"
	PhasePersisting DraftPhase = "persisting"
)

// SyncState tracks one logical unit of work against the server.
// Synced after a final submit means the local draft is safe to delete; after
// an interim save the local copy stays authoritative until submission.
type SyncState string

const (
	SyncStateUnsynced SyncState = "unsynced"
	SyncStateSynced   SyncState = "synced"
)
