// Package sqlite implements the store on a local SQLite file for
// development and verification runs. INSERT OR IGNORE provides the same
// insert-or-skip semantics as the PostgreSQL backend; SQLite cannot
// express the time-based sanity check, so no per-record failure outcome
// is produced here.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/areeshzakir/plutus-data-warehouse/pkg/errors"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/record"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/sink"
)

const watermarkTable = "ingestion_watermarks"

// Store writes reconciled records and watermarks to a SQLite file.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	// SQLite allows one writer; more connections just queue on locks.
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the watermark table and one record table per
// target. Timestamps are stored as RFC 3339 UTC strings.
func (s *Store) EnsureSchema(ctx context.Context, tables []string) error {
	ddl := []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		source_id  TEXT PRIMARY KEY,
		watermark  TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`, watermarkTable)}

	for _, table := range tables {
		ddl = append(ddl, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
		dedup_key    TEXT PRIMARY KEY,
		identity_key TEXT,
		event_time   TEXT,
		attrs        TEXT NOT NULL,
		overflow     TEXT,
		payload      TEXT,
		ingested_at  TEXT NOT NULL
	)`, table))
	}

	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.WrapIO("ensure schema", "sqlite", err)
		}
	}
	return nil
}

// Write implements sink.Sink.
func (s *Store) Write(ctx context.Context, table string, batch []record.Reconciled) (sink.Result, error) {
	var result sink.Result
	if len(batch) == 0 {
		return result, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, errors.WrapWrite(table, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT OR IGNORE INTO %q
		(dedup_key, identity_key, event_time, attrs, overflow, payload, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, table))
	if err != nil {
		return result, errors.WrapWrite(table, err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(record.TimeLayout)
	for _, rec := range batch {
		attrs, err := json.Marshal(rec.Attrs)
		if err != nil {
			return sink.Result{}, fmt.Errorf("marshal attrs: %w", err)
		}
		var overflow, payload any
		if len(rec.Overflow) > 0 {
			b, err := json.Marshal(rec.Overflow)
			if err != nil {
				return sink.Result{}, fmt.Errorf("marshal overflow: %w", err)
			}
			overflow = string(b)
		}
		if len(rec.Sources) > 0 {
			b, err := json.Marshal(rec.Sources)
			if err != nil {
				return sink.Result{}, fmt.Errorf("marshal payload: %w", err)
			}
			payload = string(b)
		}
		var identityKey, eventTime any
		if rec.IdentityKey != "" {
			identityKey = rec.IdentityKey
		}
		if rec.HasEventTime {
			eventTime = rec.EventTime.UTC().Format(record.TimeLayout)
		}

		res, err := stmt.ExecContext(ctx, rec.DedupKey, identityKey, eventTime,
			string(attrs), overflow, payload, now)
		if err != nil {
			return sink.Result{}, errors.WrapWrite(table, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return sink.Result{}, errors.WrapWrite(table, err)
		}
		if affected > 0 {
			result.Add(sink.OutcomeInserted)
		} else {
			result.Add(sink.OutcomeSkipped)
		}
	}

	if err := tx.Commit(); err != nil {
		return sink.Result{}, errors.WrapWrite(table, err)
	}
	return result, nil
}

// GetWatermark implements watermark.Store.
func (s *Store) GetWatermark(ctx context.Context, sourceID string) (time.Time, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT watermark FROM %s WHERE source_id = ?`, watermarkTable),
		sourceID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, errors.WrapIO("read watermark", sourceID, err)
	}
	wm, err := time.Parse(record.TimeLayout, raw)
	if err != nil {
		return time.Time{}, false, errors.WrapParse("watermark", sourceID, err)
	}
	return wm.UTC(), true, nil
}

// SetWatermark implements watermark.Store. MAX keeps the watermark
// monotonic when runs race on the same source.
func (s *Store) SetWatermark(ctx context.Context, sourceID string, ts time.Time) error {
	now := time.Now().UTC().Format(record.TimeLayout)
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (source_id, watermark, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (source_id) DO UPDATE SET
			watermark  = MAX(%s.watermark, excluded.watermark),
			updated_at = excluded.updated_at`, watermarkTable, watermarkTable),
		sourceID, ts.UTC().Format(record.TimeLayout), now)
	if err != nil {
		return errors.WrapIO("set watermark", sourceID, err)
	}
	return nil
}
