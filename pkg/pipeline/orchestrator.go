package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/areeshzakir/plutus-data-warehouse/pkg/errors"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/logging"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/record"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/sink"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/watermark"
)

// Fetcher pulls one source's rows from its upstream system. Fetchers
// return the complete current dataset; incremental behavior comes from
// the watermark filter, not from the fetch.
type Fetcher interface {
	Fetch(ctx context.Context) ([]record.Raw, error)
}

// FetchFunc adapts a function to the Fetcher interface.
type FetchFunc func(ctx context.Context) ([]record.Raw, error)

// Fetch implements Fetcher.
func (f FetchFunc) Fetch(ctx context.Context) ([]record.Raw, error) {
	return f(ctx)
}

// Store is the durable storage an orchestrator runs against: the record
// sink plus the watermark table it owns.
type Store interface {
	sink.Sink
	watermark.Store
}

// Orchestrator runs the pipeline for a set of sources against one store.
// Sources run sequentially and are isolated: one source failing never
// prevents the remaining sources from running.
type Orchestrator struct {
	store    Store
	fetchers map[string]Fetcher
	dryRun   bool
	now      func() time.Time
	logger   *zerolog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDryRun runs every in-memory stage but skips persistence and
// watermark updates, so expected counts can be verified safely.
func WithDryRun(dry bool) Option {
	return func(o *Orchestrator) { o.dryRun = dry }
}

// WithClock overrides the clock used for future-timestamp checks.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithLogger sets the orchestrator's logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// NewOrchestrator creates an Orchestrator writing to store.
func NewOrchestrator(store Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		fetchers: make(map[string]Fetcher),
		now:      time.Now,
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RegisterFetcher binds a fetcher to a source name. A source whose name
// has no registered fetcher fails with a configuration error.
func (o *Orchestrator) RegisterFetcher(name string, f Fetcher) {
	o.fetchers[name] = f
}

// Run ingests every configured source in order and returns one summary
// per source, in the same order. A source failure is recorded in its
// summary and the run continues with the next source.
func (o *Orchestrator) Run(ctx context.Context, cfgs []SourceConfig) []record.RunSummary {
	summaries := make([]record.RunSummary, 0, len(cfgs))
	for _, cfg := range cfgs {
		summary := o.runSource(ctx, cfg)
		if summary.Failed() {
			o.logger.Error().
				Str("source", summary.Source).
				Err(summary.Err).
				Msg("source failed")
		} else {
			o.logger.Info().
				Str("source", summary.Source).
				Int("fetched", summary.Fetched).
				Int("inserted", summary.Inserted).
				Int("skipped", summary.SkippedDuplicate).
				Msg("source complete")
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func (o *Orchestrator) runSource(ctx context.Context, cfg SourceConfig) record.RunSummary {
	summary := record.RunSummary{Source: cfg.Name}
	logger := logging.WithSource(o.logger, cfg.Name)

	pipe, err := New(cfg, o.now, o.logger)
	if err != nil {
		summary.Err = err
		return summary
	}

	fetcher, ok := o.fetchers[cfg.Name]
	if !ok {
		summary.Err = errors.NewConfigError(cfg.Name, "fetcher", "no fetcher registered")
		return summary
	}

	wm, hasWM, err := o.store.GetWatermark(ctx, cfg.Name)
	if err != nil {
		summary.Err = errors.WrapIO("read watermark", cfg.Name, err)
		return summary
	}
	filter := watermark.NewFilter(wm, hasWM, cfg.Lookback)
	if cutoff, ok := filter.Cutoff(); ok {
		logger.Debug().Time("cutoff", cutoff).Msg("incremental fetch")
	} else {
		logger.Debug().Msg("first run, full fetch")
	}

	raws, err := fetcher.Fetch(ctx)
	if err != nil {
		summary.Err = err
		return summary
	}
	summary.Fetched = len(raws)
	if len(raws) == 0 {
		logger.Info().Msg("no rows fetched")
		return summary
	}

	batch := pipe.Process(raws, filter, &summary)
	if len(batch) == 0 {
		return summary
	}

	if o.dryRun {
		// Every record that survived shaping would be attempted.
		summary.Inserted = len(batch)
		logger.Info().Int("records", len(batch)).Msg("dry run, skipping write")
		return summary
	}

	result, err := o.store.Write(ctx, cfg.Table, batch)
	if err != nil {
		summary.Err = err
		return summary
	}
	summary.Inserted = result.Inserted
	summary.SkippedDuplicate = result.Skipped
	summary.WriteErrors = result.Failed

	o.advanceWatermark(ctx, logger, cfg.Name, wm, hasWM, batch, result)
	return summary
}

// advanceWatermark persists the maximum event timestamp among records
// actually inserted. Skipped and failed records never advance the
// watermark, so a partially rejected batch is refetched next run and
// resolved by the uniqueness constraint.
func (o *Orchestrator) advanceWatermark(ctx context.Context, logger zerolog.Logger,
	source string, wm time.Time, hasWM bool, batch []record.Reconciled, result sink.Result,
) {
	var max time.Time
	found := false
	for i, outcome := range result.Outcomes {
		if outcome != sink.OutcomeInserted || !batch[i].HasEventTime {
			continue
		}
		if !found || batch[i].EventTime.After(max) {
			max = batch[i].EventTime
			found = true
		}
	}
	if !found || (hasWM && !max.After(wm)) {
		return
	}

	if err := o.store.SetWatermark(ctx, source, max); err != nil {
		// The write itself succeeded. A stale watermark only widens the
		// next fetch; duplicates are rejected by the constraint.
		logger.Warn().Err(err).Msg("failed to advance watermark")
		return
	}
	logger.Debug().Time("watermark", max).Msg("watermark advanced")
}
