package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/areeshzakir/plutus-data-warehouse/cmd/plutus/app"
	"github.com/areeshzakir/plutus-data-warehouse/internal/cmd/output"
	"github.com/areeshzakir/plutus-data-warehouse/internal/config"
	"github.com/areeshzakir/plutus-data-warehouse/internal/sources/csvapi"
	"github.com/areeshzakir/plutus-data-warehouse/internal/sources/sheets"
	"github.com/areeshzakir/plutus-data-warehouse/internal/store/memory"
	"github.com/areeshzakir/plutus-data-warehouse/internal/store/postgres"
	"github.com/areeshzakir/plutus-data-warehouse/internal/store/sqlite"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/errors"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/pipeline"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/record"
)

func newIngestCmd(a *app.App) *cobra.Command {
	var (
		dryRun bool
		only   []string
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch, reconcile, and load all configured sources",
		Long: `Ingest runs the full pipeline for every source in the configuration
file: incremental fetch past the stored watermark, normalization,
validation, deduplication, and an idempotent load. Sources run in
order; a failing source is reported and skipped, never aborting the
others.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(cmd.Context(), a, dryRun, only)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"run every stage except persistence and watermark updates")
	cmd.Flags().StringSliceVar(&only, "source", nil,
		"ingest only the named source (repeatable)")
	return cmd
}

func runIngest(ctx context.Context, a *app.App, dryRun bool, only []string) error {
	file, err := config.Load(a.Config().SourcesFile)
	if err != nil {
		return err
	}

	selected, err := selectSources(file.Sources, only)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, a, file)
	if err != nil {
		return err
	}
	defer closeStore()

	orch := pipeline.NewOrchestrator(store,
		pipeline.WithLogger(a.Logger()),
		pipeline.WithDryRun(dryRun),
	)
	cfgs := make([]pipeline.SourceConfig, 0, len(selected))
	for _, s := range selected {
		orch.RegisterFetcher(s.Name, newFetcher(s))
		cfgs = append(cfgs, s.SourceConfig)
	}

	summaries := orch.Run(ctx, cfgs)
	if err := renderSummaries(a, summaries); err != nil {
		return err
	}

	failed := 0
	for _, s := range summaries {
		if s.Failed() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d sources failed", failed, len(summaries))
	}
	return nil
}

// selectSources restricts the run to the --source names, keeping file
// order. Naming an unknown source is an error rather than a silent no-op.
func selectSources(all []config.Source, only []string) ([]config.Source, error) {
	if len(only) == 0 {
		return all, nil
	}
	byName := make(map[string]config.Source, len(all))
	for _, s := range all {
		byName[s.Name] = s
	}
	selected := make([]config.Source, 0, len(only))
	for _, name := range only {
		s, ok := byName[name]
		if !ok {
			return nil, errors.NewConfigError(name, "source", "not present in configuration")
		}
		selected = append(selected, s)
	}
	return selected, nil
}

// newFetcher builds the adapter declared by the source's kind. A missing
// credential becomes a fetch-time error so it isolates to its source.
func newFetcher(s config.Source) pipeline.Fetcher {
	switch s.Kind {
	case config.KindSheets:
		token, ok := config.Secret(s.TokenEnv)
		if !ok {
			return errFetcher(errors.NewConfigError(s.Name, "token_env", s.TokenEnv+" is not set"))
		}
		var opts []sheets.Option
		if token != "" {
			opts = append(opts, sheets.WithToken(token))
		}
		return sheets.New(s.Name, s.SheetID, s.GID, opts...)

	case config.KindCSVAPI:
		apiKey, ok := config.Secret(s.APIKeyEnv)
		if !ok {
			return errFetcher(errors.NewConfigError(s.Name, "api_key_env", s.APIKeyEnv+" is not set"))
		}
		return csvapi.New(s.Name, s.Endpoint, apiKey)
	}
	return errFetcher(errors.NewConfigError(s.Name, "kind", "unknown kind "+s.Kind))
}

func errFetcher(err error) pipeline.Fetcher {
	return pipeline.FetchFunc(func(context.Context) ([]record.Raw, error) {
		return nil, err
	})
}

// openStore opens the configured backend and ensures its schema. Dry
// runs still read watermarks, so the store is opened either way.
func openStore(ctx context.Context, a *app.App, file *config.File) (pipeline.Store, func(), error) {
	switch file.Storage.Backend {
	case config.BackendPostgres:
		dsn, ok := config.Secret(file.Storage.DSNEnv)
		if !ok {
			return nil, nil, errors.NewConfigError("", "storage.dsn_env", file.Storage.DSNEnv+" is not set")
		}
		store, err := postgres.New(ctx, dsn, a.Logger())
		if err != nil {
			return nil, nil, err
		}
		if err := store.EnsureSchema(ctx, file.Tables()); err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, store.Close, nil

	case config.BackendSQLite:
		store, err := sqlite.New(file.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		if err := store.EnsureSchema(ctx, file.Tables()); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	default:
		return memory.New(), func() {}, nil
	}
}

func renderSummaries(a *app.App, summaries []record.RunSummary) error {
	format := output.DetectFormat(a.Config().Output)
	formatter := output.NewFormatter(format)
	if format == output.FormatTable {
		return formatter.Format(os.Stdout, output.SummaryData(summaries))
	}
	return formatter.Format(os.Stdout, summaries)
}
