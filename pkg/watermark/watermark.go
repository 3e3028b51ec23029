// Package watermark implements incremental-fetch filtering against a
// per-source persisted high-water mark. The watermark is owned by
// durable storage, not by the engine process: it is read before fetch
// and advanced only after a successful write, and it is never the final
// correctness guarantee. Records refetched inside the lookback margin
// are rejected downstream by the store's uniqueness constraint instead
// of being double-counted.
package watermark

import (
	"context"
	"time"

	"github.com/areeshzakir/plutus-data-warehouse/pkg/record"
)

// DefaultLookback is the safety margin subtracted from the watermark
// before filtering, tolerating late-arriving rows and clock skew.
const DefaultLookback = 24 * time.Hour

// Store reads and advances persisted watermarks.
type Store interface {
	// GetWatermark returns the last processed timestamp for a source.
	// ok=false means no watermark exists yet (first run).
	GetWatermark(ctx context.Context, sourceID string) (time.Time, bool, error)

	// SetWatermark persists the watermark for a source. Implementations
	// must tolerate concurrent runs racing on the same source; the
	// uniqueness constraint, not the watermark, guards correctness.
	SetWatermark(ctx context.Context, sourceID string, ts time.Time) error
}

// Filter restricts a batch to records newer than watermark − lookback.
type Filter struct {
	watermark time.Time
	has       bool
	lookback  time.Duration
}

// NewFilter creates a Filter. has=false (no prior watermark) passes
// every record. A non-positive lookback falls back to DefaultLookback.
func NewFilter(wm time.Time, has bool, lookback time.Duration) Filter {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return Filter{watermark: wm, has: has, lookback: lookback}
}

// Cutoff returns the effective threshold, or ok=false on a first run.
func (f Filter) Cutoff() (time.Time, bool) {
	if !f.has {
		return time.Time{}, false
	}
	return f.watermark.Add(-f.lookback), true
}

// Keep reports whether a record with the given timestamp passes the
// filter. Records without a timestamp always pass; sources that require
// one have already dropped such records during validation.
func (f Filter) Keep(ts time.Time, hasTS bool) bool {
	cutoff, ok := f.Cutoff()
	if !ok || !hasTS {
		return true
	}
	return ts.After(cutoff)
}

// Apply filters a batch of clean records, returning the records kept and
// the count filtered out.
func (f Filter) Apply(recs []record.Clean) ([]record.Clean, int) {
	if _, ok := f.Cutoff(); !ok {
		return recs, 0
	}
	kept := make([]record.Clean, 0, len(recs))
	for _, r := range recs {
		if f.Keep(r.EventTime, r.HasEventTime) {
			kept = append(kept, r)
		}
	}
	return kept, len(recs) - len(kept)
}
