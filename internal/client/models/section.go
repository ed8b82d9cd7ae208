package models

import (
	"bytes"
	"encoding/json"
)

// SectionKind names a logical form section: the unit of merge granularity,
// attachment tagging and per-section remote saves.
type SectionKind string

const (
	SectionGenerator  SectionKind = "generator"
	SectionGrid       SectionKind = "grid"
	SectionFuelTank   SectionKind = "fuel_tank"
	SectionBattery    SectionKind = "battery"
	SectionJanitorial SectionKind = "janitorial"
	SectionSecurity   SectionKind = "security"
	SectionGeneral    SectionKind = "general"
)

// SectionKinds lists every known section, in stable order.
var SectionKinds = []SectionKind{
	SectionGenerator,
	SectionGrid,
	SectionFuelTank,
	SectionBattery,
	SectionJanitorial,
	SectionSecurity,
	SectionGeneral,
}

// EquipmentSections are the sections that live under the server record's
// equipment_checks sub-document and are saved incrementally via PatchSection.
var EquipmentSections = []SectionKind{
	SectionGenerator,
	SectionGrid,
	SectionFuelTank,
	SectionBattery,
}

// CheckKey returns the wire key of a section's check list inside the server
// record's equipment_checks sub-document, e.g. "generator_checks".
func (s SectionKind) CheckKey() string {
	return string(s) + "_checks"
}

// IsEquipment reports whether the section syncs incrementally through the
// record's equipment_checks sub-document.
func (s SectionKind) IsEquipment() bool {
	for _, k := range EquipmentSections {
		if k == s {
			return true
		}
	}
	return false
}

// SectionFromCheckKey inverts CheckKey. The second return is false for
// unknown keys.
func SectionFromCheckKey(key string) (SectionKind, bool) {
	for _, s := range SectionKinds {
		if s.CheckKey() == key {
			return s, true
		}
	}
	return "", false
}

// Payload is a form's current answers: section-keyed raw JSON, so tri-state
// booleans (null = unanswered) and nested values survive untouched until a
// typed layer needs them.
type Payload map[string]json.RawMessage

// Clone returns a deep copy of the payload.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// Section unmarshals one section object. A missing or null section yields an
// empty map and no error.
func (p Payload) Section(kind SectionKind) (map[string]json.RawMessage, error) {
	raw, ok := p[string(kind)]
	if !ok || IsEmptyValue(raw) {
		return map[string]json.RawMessage{}, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// SetSection replaces one section object.
func (p Payload) SetSection(kind SectionKind, section map[string]json.RawMessage) error {
	b, err := json.Marshal(section)
	if err != nil {
		return err
	}
	p[string(kind)] = b
	return nil
}

var emptyForms = [][]byte{
	nil,
	[]byte("null"),
	[]byte("{}"),
	[]byte("[]"),
	[]byte(`""`),
}

// IsEmptyValue reports whether a raw JSON value counts as "not filled in"
// for merge purposes: absent, null, empty object, empty array or empty
// string. false and 0 are answers, not emptiness.
func IsEmptyValue(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	for _, form := range emptyForms {
		if bytes.Equal(trimmed, form) {
			return true
		}
	}
	return false
}
