// Package dedupe collapses duplicate records inside one fetched batch.
// Two passes exist for different reasons: exact elimination on the full
// dedup key only trims redundant write attempts, while grouping
// aggregation merges the multiple raw rows an entity legitimately
// produces per event (join/leave pairs and the like) into one record.
package dedupe

import "github.com/areeshzakir/plutus-data-warehouse/pkg/record"

// Exact removes records whose full dedup key tuple is identical to an
// earlier record's, keeping the first occurrence. It never changes the
// defined uniqueness semantics; the store's constraint remains the
// source of truth.
func Exact(recs []record.Clean) ([]record.Clean, int) {
	seen := make(map[string]bool, len(recs))
	kept := make([]record.Clean, 0, len(recs))
	for _, r := range recs {
		if seen[r.DedupKey] {
			continue
		}
		seen[r.DedupKey] = true
		kept = append(kept, r)
	}
	return kept, len(recs) - len(kept)
}
