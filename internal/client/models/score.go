package models

import (
	"encoding/json"
	"fmt"
)

// SectionScores holds the per-section scores an auditor assigns. It lives in
// the payload under the "section_scores" key and passes through translation
// unchanged.
type SectionScores map[SectionKind]float64

// ScoresKey is the payload key section scores are stored under.
const ScoresKey = "section_scores"

// Total sums all section scores.
func (s SectionScores) Total() float64 {
	var total float64
	for _, v := range s {
		total += v
	}
	return total
}

// TotalString renders the total with two decimals, the format shown on the
// audit summary screen.
func (s SectionScores) TotalString() string {
	return fmt.Sprintf("%.2f", s.Total())
}

// ScoresFromPayload extracts section scores from a payload. An absent or
// empty scores entry yields an empty map.
func ScoresFromPayload(p Payload) (SectionScores, error) {
	raw, ok := p[ScoresKey]
	if !ok || IsEmptyValue(raw) {
		return SectionScores{}, nil
	}
	var s SectionScores
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return s, nil
}
