// Package models defines the draft, record and section types shared by the
// fieldsync client layers.
package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fieldworks/fieldsync/internal/common"
)

// FormKind classifies the logical entity a draft belongs to.
type FormKind string

const (
	FormKindMaintenance FormKind = "maintenance"
	FormKindAudit       FormKind = "audit"
	FormKindVisit       FormKind = "visit"
)

// FormKinds lists every known kind, in the order batch sync scans them.
var FormKinds = []FormKind{FormKindMaintenance, FormKindAudit, FormKindVisit}

var ErrInvalidDraftKey = errors.New("invalid draft key")

// DraftKey deterministically addresses at most one in-flight draft per
// form-kind-per-site-per-record. It is stable across app restarts: the same
// screen always derives the same key.
type DraftKey struct {
	Kind     FormKind
	Form     string // form discriminator, e.g. "equipment" or "checklist"
	SiteID   string
	RecordID string // common.AdhocRecordID until a server record exists

	// legacy marks keys parsed from the older "<kind>_draft_<siteId>"
	// family. String must reproduce the stored form exactly, otherwise
	// reads and writes of a legacy entry would address a different key
	// than the one enumerated.
	legacy bool
}

// NewDraftKey builds a key, substituting the ad hoc marker when no server
// record id is known yet.
func NewDraftKey(kind FormKind, form, siteID, recordID string) DraftKey {
	if recordID == "" {
		recordID = common.AdhocRecordID
	}
	return DraftKey{Kind: kind, Form: form, SiteID: siteID, RecordID: recordID}
}

// String renders the persisted key format:
// "<kind>_<formDiscriminator>_<siteId>_<recordIdOrAdhoc>", or the original
// "<kind>_draft_<siteId>" form for keys parsed from the legacy family.
func (k DraftKey) String() string {
	if k.legacy {
		return LegacyAuditKey(k.Kind, k.SiteID)
	}
	return fmt.Sprintf("%s_%s_%s_%s", k.Kind, k.Form, k.SiteID, k.RecordID)
}

// IsLegacy reports whether the key belongs to the legacy family.
func (k DraftKey) IsLegacy() bool {
	return k.legacy
}

// IsAdhoc reports whether the draft is not yet associated with any
// server-side record.
func (k DraftKey) IsAdhoc() bool {
	return k.RecordID == "" || k.RecordID == common.AdhocRecordID
}

// WithRecordID returns a copy of the key bound to the given server record id.
func (k DraftKey) WithRecordID(recordID string) DraftKey {
	k.RecordID = recordID
	return k
}

// KeyPrefix returns the scan prefix for all drafts of one kind and form
// discriminator, used for dashboard counts and batch sync.
func KeyPrefix(kind FormKind, form string) string {
	return fmt.Sprintf("%s_%s_", kind, form)
}

// LegacyAuditKey renders the older whole-audit key family,
// "<auditKind>_draft_<siteId>". Entries stored under it predate ownership
// tracking and per-section payloads.
func LegacyAuditKey(kind FormKind, siteID string) string {
	return fmt.Sprintf("%s_draft_%s", kind, siteID)
}

// LegacyKeyPrefix returns the scan prefix for the legacy key family.
func LegacyKeyPrefix(kind FormKind) string {
	return fmt.Sprintf("%s_draft_", kind)
}

// IsLegacyKey reports whether a stored key belongs to the legacy family.
func IsLegacyKey(s string) bool {
	parts := strings.Split(s, "_")
	return len(parts) == 3 && parts[1] == "draft"
}

// ParseKey inverts String and LegacyAuditKey. Legacy keys come back with
// Form set to "draft" and RecordID set to the ad hoc marker.
func ParseKey(s string) (DraftKey, error) {
	parts := strings.Split(s, "_")
	switch len(parts) {
	case 4:
		return DraftKey{
			Kind:     FormKind(parts[0]),
			Form:     parts[1],
			SiteID:   parts[2],
			RecordID: parts[3],
		}, nil
	case 3:
		if parts[1] != "draft" {
			return DraftKey{}, fmt.Errorf("%w: %q", ErrInvalidDraftKey, s)
		}
		return DraftKey{
			Kind:     FormKind(parts[0]),
			Form:     "draft",
			SiteID:   parts[2],
			RecordID: common.AdhocRecordID,
			legacy:   true,
		}, nil
	default:
		return DraftKey{}, fmt.Errorf("%w: %q", ErrInvalidDraftKey, s)
	}
}
