package models

import "time"

// PhotoAttachment references one captured photo. LocalRef points at the file
// on device; RemoteURL is set once the photo has been durably uploaded.
// SectionTag names the form section the photo documents.
type PhotoAttachment struct {
	LocalRef   string `json:"local_ref"`
	RemoteURL  string `json:"remote_url,omitempty"`
	SectionTag string `json:"section_tag"`
}

// Uploaded reports whether the attachment already carries a durable URL.
// Uploading such an item again must be a no-op.
func (a PhotoAttachment) Uploaded() bool {
	return a.RemoteURL != ""
}

// DraftRecord is the persisted unit of work: the full local state of one
// in-progress form.
//
// UpdatedAt orders dashboard listings only; ownership, not recency, decides
// conflicts. OwnerID is empty for entries written before ownership tracking.
type DraftRecord struct {
	Payload        Payload              `json:"payload"`
	Attachments    []PhotoAttachment    `json:"attachments,omitempty"`
	RemoteRecordID string               `json:"remote_record_id,omitempty"`
	OwnerID        string               `json:"owner_id,omitempty"`
	Completed      map[SectionKind]bool `json:"completed,omitempty"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// SyncState derives the record's server-sync state: a draft that has ever
// been upserted carries the server's record id.
func (d *DraftRecord) SyncState() SyncState {
	if d.RemoteRecordID != "" {
		return SyncStateSynced
	}
	return SyncStateUnsynced
}

// Clone returns a deep copy safe to mutate without touching the original.
func (d *DraftRecord) Clone() *DraftRecord {
	if d == nil {
		return nil
	}
	out := &DraftRecord{
		Payload:        d.Payload.Clone(),
		RemoteRecordID: d.RemoteRecordID,
		OwnerID:        d.OwnerID,
		UpdatedAt:      d.UpdatedAt,
	}
	if d.Attachments != nil {
		out.Attachments = append([]PhotoAttachment(nil), d.Attachments...)
	}
	if d.Completed != nil {
		out.Completed = make(map[SectionKind]bool, len(d.Completed))
		for k, v := range d.Completed {
			out.Completed[k] = v
		}
	}
	return out
}

// FlattenAttachments orders section-grouped attachments into one sequence,
// preserving each item's section tag. Groups are emitted in SectionKinds
// order so the flattening is deterministic; order within a group is kept.
// RegroupAttachments is the lossless inverse.
func FlattenAttachments(grouped map[SectionKind][]PhotoAttachment) []PhotoAttachment {
	var out []PhotoAttachment
	for _, kind := range SectionKinds {
		for _, a := range grouped[kind] {
			a.SectionTag = string(kind)
			out = append(out, a)
		}
	}
	return out
}

// RegroupAttachments splits a flat tagged sequence back into per-section
// collections, preserving order within each section.
func RegroupAttachments(flat []PhotoAttachment) map[SectionKind][]PhotoAttachment {
	out := make(map[SectionKind][]PhotoAttachment)
	for _, a := range flat {
		kind := SectionKind(a.SectionTag)
		out[kind] = append(out[kind], a)
	}
	return out
}
