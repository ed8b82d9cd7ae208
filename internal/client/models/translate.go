package models

import "encoding/json"

// Translation between the wire shape and the in-memory editing shape.
//
// Only fields declared in sectionFields are carried; raw JSON values are
// copied verbatim, so translating local -> wire -> local reproduces every
// edited field exactly, including the null (unanswered) vs false (answered
// "No") distinction. Payload keys without a declared section shape pass
// through unchanged in both directions.

// SectionToWire renames a section object's fields from local to wire names.
func SectionToWire(kind SectionKind, section map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(section))
	for _, fp := range sectionFields[kind] {
		if v, ok := section[fp.Local]; ok {
			out[fp.Wire] = v
		}
	}
	return out
}

// SectionToLocal renames a section object's fields from wire to local names.
func SectionToLocal(kind SectionKind, section map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(section))
	for _, fp := range sectionFields[kind] {
		if v, ok := section[fp.Wire]; ok {
			out[fp.Local] = v
		}
	}
	return out
}

// PayloadToWire translates every declared section of a local payload into
// wire shape. Undeclared keys (section_scores, free-form notes blocks) are
// copied as-is.
func PayloadToWire(p Payload) Payload {
	return translatePayload(p, SectionToWire)
}

// PayloadToLocal translates a wire payload into the in-memory editing shape.
func PayloadToLocal(p Payload) Payload {
	return translatePayload(p, SectionToLocal)
}

func translatePayload(p Payload, translate func(SectionKind, map[string]json.RawMessage) map[string]json.RawMessage) Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for key, raw := range p {
		kind := SectionKind(key)
		if sectionFields[kind] == nil || IsEmptyValue(raw) {
			out[key] = raw
			continue
		}
		var section map[string]json.RawMessage
		if err := json.Unmarshal(raw, &section); err != nil {
			// Not an object; leave the value untouched.
			out[key] = raw
			continue
		}
		b, err := json.Marshal(translate(kind, section))
		if err != nil {
			out[key] = raw
			continue
		}
		out[key] = b
	}
	return out
}

// CheckToLocal translates one equipment check (an element of the server's
// <kind>_checks list) into the local editing shape.
func CheckToLocal(kind SectionKind, raw json.RawMessage) (map[string]json.RawMessage, error) {
	if IsEmptyValue(raw) {
		return map[string]json.RawMessage{}, nil
	}
	var section map[string]json.RawMessage
	if err := json.Unmarshal(raw, &section); err != nil {
		return nil, err
	}
	return SectionToLocal(kind, section), nil
}
