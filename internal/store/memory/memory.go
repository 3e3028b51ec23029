// Package memory implements an in-memory store with the same
// insert-or-skip semantics as the durable backends. It backs tests and
// offline experiments; nothing survives the process.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/areeshzakir/plutus-data-warehouse/pkg/record"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/sink"
)

// Store holds reconciled records keyed by table and dedup key.
type Store struct {
	mu         sync.Mutex
	tables     map[string]map[string]record.Reconciled
	watermarks map[string]time.Time

	// Reject, when set, simulates a non-uniqueness constraint: records
	// it reports true for fail instead of inserting.
	Reject func(record.Reconciled) bool
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		tables:     make(map[string]map[string]record.Reconciled),
		watermarks: make(map[string]time.Time),
	}
}

// Write implements sink.Sink with first-writer-wins semantics per dedup
// key, matching the durable backends' unique constraint.
func (s *Store) Write(_ context.Context, table string, batch []record.Reconciled) (sink.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.tables[table]
	if !ok {
		rows = make(map[string]record.Reconciled)
		s.tables[table] = rows
	}

	var result sink.Result
	for _, rec := range batch {
		if s.Reject != nil && s.Reject(rec) {
			result.Add(sink.OutcomeFailed)
			continue
		}
		if _, exists := rows[rec.DedupKey]; exists {
			result.Add(sink.OutcomeSkipped)
			continue
		}
		rows[rec.DedupKey] = rec
		result.Add(sink.OutcomeInserted)
	}
	return result, nil
}

// GetWatermark implements watermark.Store.
func (s *Store) GetWatermark(_ context.Context, sourceID string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wm, ok := s.watermarks[sourceID]
	return wm, ok, nil
}

// SetWatermark implements watermark.Store. Later timestamps win when
// concurrent runs race on the same source.
func (s *Store) SetWatermark(_ context.Context, sourceID string, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.watermarks[sourceID]; !ok || ts.After(cur) {
		s.watermarks[sourceID] = ts
	}
	return nil
}

// Count returns the number of records stored in a table.
func (s *Store) Count(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tables[table])
}

// Get returns the stored record for a dedup key.
func (s *Store) Get(table, dedupKey string) (record.Reconciled, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tables[table][dedupKey]
	return rec, ok
}
