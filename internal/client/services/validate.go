package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fieldworks/fieldsync/internal/client/models"
)

// ErrValidation is the sentinel matched by errors.Is for any validation
// failure.
var ErrValidation = errors.New("validation failed")

// ValidationError lists, per section, the required fields still unanswered.
// A field answered "No" (false) counts as answered; only null/absent values
// are missing.
type ValidationError struct {
	Missing map[models.SectionKind][]string
}

func (e *ValidationError) Error() string {
	var parts []string
	for _, kind := range models.SectionKinds {
		if fields := e.Missing[kind]; len(fields) > 0 {
			sorted := append([]string(nil), fields...)
			sort.Strings(sorted)
			parts = append(parts, fmt.Sprintf("%s: %s", kind, strings.Join(sorted, ", ")))
		}
	}
	return "validation failed: missing " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidateSections checks every section present in the payload against its
// declared required fields and returns the explicit per-section completed
// flags. Completion is decided here, deterministically — never inferred
// afterwards from data shape.
//
// An error means the payload must not be submitted; validation has no side
// effects.
func ValidateSections(payload models.Payload) (map[models.SectionKind]bool, error) {
	completed := map[models.SectionKind]bool{}
	missing := map[models.SectionKind][]string{}

	anyPresent := false
	for _, kind := range models.SectionKinds {
		raw, ok := payload[string(kind)]
		if !ok || models.IsEmptyValue(raw) {
			continue
		}
		anyPresent = true

		section, err := payload.Section(kind)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed section %s", ErrValidation, kind)
		}

		var sectionMissing []string
		for _, field := range models.RequiredFields(kind) {
			value, ok := section[field]
			if !ok || models.IsEmptyValue(value) {
				sectionMissing = append(sectionMissing, field)
			}
		}
		if len(sectionMissing) > 0 {
			missing[kind] = sectionMissing
			continue
		}
		completed[kind] = true
	}

	if !anyPresent {
		return nil, fmt.Errorf("%w: nothing to submit", ErrValidation)
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}
	return completed, nil
}
