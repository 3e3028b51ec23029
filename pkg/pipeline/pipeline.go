// Package pipeline composes the per-source ingestion stages: column
// normalization, validation and cleaning, identity derivation, watermark
// filtering, deduplication and aggregation, and the insert-or-skip write.
// Every source is data flowing through this one pipeline; per-source
// behavior lives entirely in SourceConfig.
package pipeline

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/areeshzakir/plutus-data-warehouse/pkg/clean"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/dedupe"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/identity"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/logging"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/normalize"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/record"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/watermark"
)

// Pipeline transforms one source's raw rows into reconciled records
// ready for the sink. A Pipeline is built once per run; its column
// mapper accumulates once-per-run drift warnings.
type Pipeline struct {
	cfg        SourceConfig
	parser     *clean.DateParser
	auxParsers []*clean.DateParser
	builder    *identity.Builder
	aggregator *dedupe.Aggregator
	now        func() time.Time
	logger     zerolog.Logger
}

// New validates cfg and builds a Pipeline for one run. now supplies the
// clock for future-timestamp checks.
func New(cfg SourceConfig, now func() time.Time, logger *zerolog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}

	p := &Pipeline{cfg: cfg, now: now}
	if logger != nil {
		p.logger = logging.WithSource(logger, cfg.Name)
	} else {
		p.logger = zerolog.Nop()
	}

	if cfg.Timestamp.Column != "" {
		parser, err := clean.NewDateParser(cfg.Timestamp.Convention, cfg.Timestamp.Zone)
		if err != nil {
			return nil, err
		}
		p.parser = parser
	}
	if len(cfg.Clean.Timestamps) > 0 {
		// Secondary timestamps share the source's convention and zone.
		convention := cfg.Timestamp.Convention
		if !convention.Valid() {
			convention = clean.ConventionISO
		}
		parser, err := clean.NewDateParser(convention, cfg.Timestamp.Zone)
		if err != nil {
			return nil, err
		}
		p.auxParsers = []*clean.DateParser{parser}
	}
	if cfg.Identity.Strategy != "" {
		p.builder = identity.NewBuilder(cfg.Identity)
	}
	if cfg.Aggregate != nil {
		p.aggregator = dedupe.NewAggregator(*cfg.Aggregate)
	}
	return p, nil
}

// Process runs every in-memory stage over one fetched batch and fills
// the summary's shaping counters. Persistence counters are filled later
// by the caller from the sink result.
func (p *Pipeline) Process(raws []record.Raw, filter watermark.Filter, summary *record.RunSummary) []record.Reconciled {
	mapper := normalize.NewMapper(p.cfg.Columns, &p.logger)

	cleaned := make([]record.Clean, 0, len(raws))
	for _, raw := range raws {
		rec, ok := p.cleanOne(mapper.Normalize(raw), summary)
		if ok {
			cleaned = append(cleaned, rec)
		}
	}

	var filtered int
	cleaned, filtered = filter.Apply(cleaned)
	summary.FilteredByWatermark += filtered

	var out []record.Reconciled
	if p.aggregator != nil {
		// Aggregation subsumes the exact pass: rejoin rows share the
		// dedup tuple but must be merged, not discarded.
		before := len(cleaned)
		out = p.aggregator.Aggregate(cleaned)
		summary.DuplicatesRemoved += before - len(out)
		// Group merging changes attribute values, so dedup keys are
		// rebuilt from the merged attributes.
		for i := range out {
			out[i].DedupKey = identity.DedupKey(out[i].Attrs, p.cfg.DedupKey)
		}
	} else {
		var removed int
		cleaned, removed = dedupe.Exact(cleaned)
		summary.DuplicatesRemoved += removed

		out = make([]record.Reconciled, 0, len(cleaned))
		for _, rec := range cleaned {
			out = append(out, record.FromClean(rec))
		}
	}
	return out
}

// cleanOne validates and cleans a single normalized record. ok=false
// means the record was dropped; the reason is already counted.
func (p *Pipeline) cleanOne(n record.Normalized, summary *record.RunSummary) (record.Clean, bool) {
	n.Attrs[SourceAttr] = record.String(p.cfg.Name)
	p.applyTextRules(n.Attrs)

	rec := record.Clean{
		Attrs:    n.Attrs,
		Overflow: n.Overflow,
		Original: n.Original,
	}

	if p.parser != nil {
		ok := p.applyEventTime(&rec, summary)
		if !ok {
			return record.Clean{}, false
		}
	}

	if p.builder != nil {
		key, ok := p.builder.Apply(rec.Attrs)
		if !ok {
			summary.DroppedInvalidPhone++
			p.logger.Debug().
				Str("reason", "no usable identity").
				Msg("record dropped")
			return record.Clean{}, false
		}
		rec.IdentityKey = key
	}

	rec.DedupKey = identity.DedupKey(rec.Attrs, p.cfg.DedupKey)
	return rec, true
}

// applyEventTime parses the primary timestamp. Empty and unparseable
// values are counted separately; a record survives either only when the
// timestamp is not required. Timestamps too far in the future are always
// dropped because the storage constraint would reject them anyway.
func (p *Pipeline) applyEventTime(rec *record.Clean, summary *record.RunSummary) bool {
	col := p.cfg.Timestamp.Column
	raw := rec.Attrs[col].Or("")

	ts, err := p.parser.Parse(raw)
	switch {
	case err == nil && clean.TooFarInFuture(ts, p.now()):
		summary.DroppedInvalidDate++
		p.logger.Debug().Str("value", raw).Msg("timestamp too far in the future")
		return false

	case err == nil:
		rec.EventTime = ts
		rec.HasEventTime = true
		rec.Attrs[col] = record.String(ts.Format(record.TimeLayout))
		return true

	case errors.Is(err, clean.ErrEmptyTimestamp):
		summary.EmptyDate++

	default:
		summary.DroppedInvalidDate++
		p.logger.Debug().Str("value", raw).Msg("unparseable timestamp")
	}

	if p.cfg.Timestamp.Required {
		return false
	}
	rec.Attrs[col] = record.Null()
	return true
}

// applyTextRules runs the configured per-attribute cleanup over the
// canonical attributes. Unparseable secondary timestamps become null
// rather than dropping the record.
func (p *Pipeline) applyTextRules(attrs map[string]record.Value) {
	for attr, v := range attrs {
		if v.Valid {
			attrs[attr] = record.String(clean.NormalizeSpace(v.Str))
		}
	}
	for _, attr := range p.cfg.Clean.ProperCase {
		if v := attrs[attr]; !v.IsBlank() {
			attrs[attr] = record.String(clean.ProperCase(v.Str))
		}
	}
	for _, attr := range p.cfg.Clean.Lowercase {
		if v := attrs[attr]; !v.IsBlank() {
			attrs[attr] = record.String(strings.ToLower(v.Str))
		}
	}
	for _, attr := range p.cfg.Clean.Booleans {
		if v := attrs[attr]; v.Valid {
			_, canonical := clean.ParseBool(v.Str)
			attrs[attr] = record.String(canonical)
		}
	}
	for _, attr := range p.cfg.Clean.Minutes {
		if v := attrs[attr]; v.Valid {
			attrs[attr] = record.String(strconv.Itoa(clean.ParseMinutes(v.Str)))
		}
	}
	for _, parser := range p.auxParsers {
		for _, attr := range p.cfg.Clean.Timestamps {
			v := attrs[attr]
			if !v.Valid {
				continue
			}
			ts, err := parser.Parse(v.Str)
			if err != nil {
				attrs[attr] = record.Null()
				continue
			}
			attrs[attr] = record.String(ts.Format(record.TimeLayout))
		}
	}
}
