// Package postgres implements the durable store on PostgreSQL via pgx.
// Every target table carries a unique constraint on the dedup key and a
// sanity check on the event timestamp; the insert-or-skip contract rides
// on ON CONFLICT DO NOTHING with affected-row counting.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/areeshzakir/plutus-data-warehouse/pkg/errors"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/logging"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/record"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/sink"
)

// Postgres error codes we classify per record.
const (
	codeUniqueViolation  = "23505"
	codeCheckViolation   = "23514"
	codeNotNullViolation = "23502"
)

const watermarkTable = "ingestion_watermarks"

// Store writes reconciled records and watermarks to PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// New connects a pool to dsn. The caller owns Close.
func New(ctx context.Context, dsn string, logger *zerolog.Logger) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.WrapIO("parse dsn", "postgres", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.WrapIO("connect", "postgres", err)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{pool: pool, logger: logger.With().Str("store", "postgres").Logger()}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the watermark table and one record table per
// target. Record tables share a fixed shape; per-source attributes live
// in jsonb, so schema drift upstream never needs a migration here.
func (s *Store) EnsureSchema(ctx context.Context, tables []string) error {
	ddl := []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		source_id  TEXT PRIMARY KEY,
		watermark  TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, watermarkTable)}

	for _, table := range tables {
		ddl = append(ddl, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id           BIGSERIAL PRIMARY KEY,
		dedup_key    TEXT NOT NULL,
		identity_key TEXT,
		event_time   TIMESTAMPTZ,
		attrs        JSONB NOT NULL,
		overflow     JSONB,
		payload      JSONB,
		ingested_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT %s_dedup_key_uniq UNIQUE (dedup_key),
		CONSTRAINT %s_event_time_sane CHECK (event_time IS NULL OR event_time < now() + interval '1 day')
	)`, pgx.Identifier{table}.Sanitize(), table, table))
	}

	for _, stmt := range ddl {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return errors.WrapIO("ensure schema", "postgres", err)
		}
	}
	return nil
}

// Write implements sink.Sink. The batch is queued as one round trip; if
// the batch aborts on a per-record constraint the whole batch is retried
// row by row so the remaining records still get their chance.
func (s *Store) Write(ctx context.Context, table string, batch []record.Reconciled) (sink.Result, error) {
	if len(batch) == 0 {
		return sink.Result{}, nil
	}

	result, err := s.writeBatch(ctx, table, batch)
	if err == nil {
		return result, nil
	}
	if _, perRecord := classify(err); !perRecord {
		return sink.Result{}, errors.WrapWrite(table, err)
	}

	s.logger.Debug().Err(err).Str("table", table).
		Msg("batch aborted on record constraint, retrying row by row")
	return s.writeRows(ctx, table, batch)
}

func (s *Store) writeBatch(ctx context.Context, table string, batch []record.Reconciled) (sink.Result, error) {
	b := &pgx.Batch{}
	for _, rec := range batch {
		args, err := insertArgs(rec)
		if err != nil {
			return sink.Result{}, err
		}
		b.Queue(insertSQL(table), args...)
	}

	var result sink.Result
	br := s.pool.SendBatch(ctx, b)
	for range batch {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return sink.Result{}, err
		}
		if tag.RowsAffected() > 0 {
			result.Add(sink.OutcomeInserted)
		} else {
			result.Add(sink.OutcomeSkipped)
		}
	}
	if err := br.Close(); err != nil {
		return sink.Result{}, err
	}
	return result, nil
}

func (s *Store) writeRows(ctx context.Context, table string, batch []record.Reconciled) (sink.Result, error) {
	var result sink.Result
	for _, rec := range batch {
		args, err := insertArgs(rec)
		if err != nil {
			return result, err
		}
		tag, err := s.pool.Exec(ctx, insertSQL(table), args...)
		switch {
		case err == nil && tag.RowsAffected() > 0:
			result.Add(sink.OutcomeInserted)
		case err == nil:
			result.Add(sink.OutcomeSkipped)
		default:
			outcome, perRecord := classify(err)
			if !perRecord {
				return result, errors.WrapWrite(table, err)
			}
			s.logger.Warn().Err(err).Str("key", rec.DedupKey).Msg("record rejected")
			result.Add(outcome)
		}
	}
	return result, nil
}

func insertSQL(table string) string {
	return fmt.Sprintf(`INSERT INTO %s
		(dedup_key, identity_key, event_time, attrs, overflow, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (dedup_key) DO NOTHING`,
		pgx.Identifier{table}.Sanitize())
}

func insertArgs(rec record.Reconciled) ([]any, error) {
	attrs, err := json.Marshal(rec.Attrs)
	if err != nil {
		return nil, fmt.Errorf("marshal attrs: %w", err)
	}
	var overflow, payload []byte
	if len(rec.Overflow) > 0 {
		if overflow, err = json.Marshal(rec.Overflow); err != nil {
			return nil, fmt.Errorf("marshal overflow: %w", err)
		}
	}
	if len(rec.Sources) > 0 {
		if payload, err = json.Marshal(rec.Sources); err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
	}

	var identityKey *string
	if rec.IdentityKey != "" {
		identityKey = &rec.IdentityKey
	}
	var eventTime *time.Time
	if rec.HasEventTime {
		eventTime = &rec.EventTime
	}
	return []any{rec.DedupKey, identityKey, eventTime, attrs, overflow, payload}, nil
}

// classify maps a write error to a per-record outcome. perRecord=false
// means the error is environmental (connection, syntax, missing table)
// and must abort the batch.
func classify(err error) (sink.Outcome, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return 0, false
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return sink.OutcomeSkipped, true
	case codeCheckViolation, codeNotNullViolation:
		return sink.OutcomeFailed, true
	}
	return 0, false
}

// GetWatermark implements watermark.Store.
func (s *Store) GetWatermark(ctx context.Context, sourceID string) (time.Time, bool, error) {
	var wm time.Time
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT watermark FROM %s WHERE source_id = $1`, watermarkTable),
		sourceID,
	).Scan(&wm)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, errors.WrapIO("read watermark", sourceID, err)
	}
	return wm.UTC(), true, nil
}

// SetWatermark implements watermark.Store. GREATEST keeps the watermark
// monotonic when concurrent runs race on the same source.
func (s *Store) SetWatermark(ctx context.Context, sourceID string, ts time.Time) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`INSERT INTO %s (source_id, watermark, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (source_id) DO UPDATE SET
			watermark  = GREATEST(%s.watermark, EXCLUDED.watermark),
			updated_at = now()`, watermarkTable, watermarkTable),
		sourceID, ts.UTC())
	if err != nil {
		return errors.WrapIO("set watermark", sourceID, err)
	}
	return nil
}
