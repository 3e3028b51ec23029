// Package sink defines the insert-or-skip-on-conflict write contract.
// A sink attempts to insert every record in a batch; records whose dedup
// key already satisfies the persisted uniqueness constraint are silently
// skipped, never raised. Writing the same batch twice inserts nothing on
// the second call.
package sink

import (
	"context"

	"github.com/areeshzakir/plutus-data-warehouse/pkg/record"
)

// Outcome classifies the fate of one record in a write.
type Outcome int

const (
	// OutcomeInserted means the record was newly persisted.
	OutcomeInserted Outcome = iota
	// OutcomeSkipped means the uniqueness constraint matched an
	// existing record; this is the expected "already ingested" signal.
	OutcomeSkipped
	// OutcomeFailed means a non-uniqueness constraint rejected the
	// record (e.g. a future-timestamp check). The rest of the batch
	// still proceeds.
	OutcomeFailed
)

// Result reports per-record outcomes of one Write call. Outcomes is
// parallel to the input batch, so callers can compute the maximum
// timestamp among records actually inserted.
type Result struct {
	Inserted int
	Skipped  int
	Failed   int
	Outcomes []Outcome
}

// Add appends one outcome and bumps the matching counter.
func (r *Result) Add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o {
	case OutcomeInserted:
		r.Inserted++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}

// Sink writes reconciled batches to durable storage.
type Sink interface {
	// Write attempts to insert every record into the named table. It
	// returns an error only when the batch as a whole could not be
	// written; per-record rejections are reported through the Result.
	Write(ctx context.Context, table string, batch []record.Reconciled) (Result, error)
}
