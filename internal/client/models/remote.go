package models

import "encoding/json"

// RecordStatus is the server-side lifecycle of a record. Stored drafts are
// purely local and have no RecordStatus until submitted.
type RecordStatus string

const (
	RecordStatusDraft           RecordStatus = "draft"
	RecordStatusSubmitted       RecordStatus = "submitted"
	RecordStatusPendingApproval RecordStatus = "pending_approval"
	RecordStatusApproved        RecordStatus = "approved"
	RecordStatusRejected        RecordStatus = "rejected"
)

// RemoteRecord is the server's view of one audit / maintenance task / visit.
// Payload holds the whole-form sections in wire shape; EquipmentChecks holds
// the per-check-kind lists that previous sessions may have synced
// incrementally.
type RemoteRecord struct {
	ID              string                       `json:"id"`
	SiteID          string                       `json:"site_id"`
	OwnerID         string                       `json:"owner_id,omitempty"`
	Status          RecordStatus                 `json:"status,omitempty"`
	Payload         Payload                      `json:"payload,omitempty"`
	EquipmentChecks map[string][]json.RawMessage `json:"equipment_checks,omitempty"`
}

// CheckAt returns the idx-th check of the given section's check list, or nil
// when the list is shorter or absent.
func (r *RemoteRecord) CheckAt(kind SectionKind, idx int) json.RawMessage {
	if r == nil || r.EquipmentChecks == nil {
		return nil
	}
	list := r.EquipmentChecks[kind.CheckKey()]
	if idx < 0 || idx >= len(list) {
		return nil
	}
	return list[idx]
}

// AssignedRecord is one row of the technician's work list.
type AssignedRecord struct {
	ID       string       `json:"id"`
	SiteID   string       `json:"site_id"`
	SiteName string       `json:"site_name,omitempty"`
	Kind     FormKind     `json:"kind"`
	Status   RecordStatus `json:"status"`
}
