package services

import (
	"bytes"

	"github.com/fieldworks/fieldsync/internal/client/models"
)

// MergePayloads reconciles a freshly-fetched server payload with the
// locally-pending payload before a final submit, at section granularity
// only. Earlier sessions may have synced some sections independently; a
// naive "submit local" would discard them.
//
// Per section: a filled server value beats an empty or absent local value;
// an empty server value never beats a filled local value; sections present
// in neither stay absent. When both sides hold different non-empty values
// the server value is taken and the section is reported in conflicts so the
// caller can warn the user — see the package's design notes on this policy.
//
// The merge is idempotent: merging the server payload with the merge result
// reproduces the result, so re-running it is safe.
func MergePayloads(server, local models.Payload) (models.Payload, []string) {
	out := models.Payload{}
	var conflicts []string

	seen := map[string]bool{}
	for key := range server {
		seen[key] = true
	}
	for key := range local {
		seen[key] = true
	}

	for key := range seen {
		sv, sok := server[key]
		lv, lok := local[key]
		serverFilled := sok && !models.IsEmptyValue(sv)
		localFilled := lok && !models.IsEmptyValue(lv)

		switch {
		case serverFilled && localFilled:
			if !bytes.Equal(bytes.TrimSpace(sv), bytes.TrimSpace(lv)) {
				conflicts = append(conflicts, key)
			}
			out[key] = sv
		case serverFilled:
			out[key] = sv
		case lok:
			out[key] = lv
		default:
			out[key] = sv
		}
	}
	return out, conflicts
}
