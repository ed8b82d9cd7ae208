package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownField = errors.New("unknown section or field")

// SetField is the single update action the forms emit: replace one field of
// one section. The closed action set replaces string-path writers; a write
// to an undeclared section/field pair is rejected instead of materializing
// a new path.
type SetField struct {
	Section SectionKind
	Field   string
	Value   json.RawMessage
}

// ApplyUpdate validates the action against the declared section shapes and
// returns a new payload with the field replaced. The input payload is not
// mutated; every edit yields a full replacement payload, so the last write
// within a session wins at whole-payload granularity.
func ApplyUpdate(p Payload, action SetField) (Payload, error) {
	if !HasField(action.Section, action.Field) {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, action.Section, action.Field)
	}

	out := p.Clone()
	if out == nil {
		out = Payload{}
	}

	section, err := out.Section(action.Section)
	if err != nil {
		return nil, fmt.Errorf("reading section %s: %w", action.Section, err)
	}

	value := action.Value
	if len(value) == 0 {
		value = json.RawMessage("null")
	}
	section[action.Field] = value

	if err := out.SetSection(action.Section, section); err != nil {
		return nil, fmt.Errorf("writing section %s: %w", action.Section, err)
	}
	return out, nil
}
