// Package cmd implements the plutus CLI commands.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/areeshzakir/plutus-data-warehouse/cmd/plutus/app"
)

// Execute builds the command tree and runs it with the given arguments.
func Execute(ctx context.Context, a *app.App, args []string) error {
	root := NewRootCmd(a)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd(a *app.App) *cobra.Command {
	var (
		verbose     bool
		quiet       bool
		noColor     bool
		output      string
		sourcesFile string
	)

	root := &cobra.Command{
		Use:   "plutus",
		Short: "Incremental ingestion and reconciliation for marketing and sales data",
		Long: `Plutus pulls rows from configured sources (spreadsheet tabs, CSV
endpoints), normalizes and validates them, deduplicates within and
across runs, and loads the survivors into durable storage. Runs are
incremental and idempotent: re-running never double-counts a record.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			a.Config().UpdateFromFlags(verbose, quiet, noColor, output, sourcesFile)
			logger := app.NewLogger(a.Config())
			*a.Logger() = logger
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	flags.BoolVarP(&quiet, "quiet", "q", false, "quiet output (warnings and errors only)")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	flags.StringVarP(&output, "output", "o", "", "output format: table, json, yaml")
	flags.StringVar(&sourcesFile, "sources", "", "pipeline configuration file (default sources.yaml)")

	root.AddCommand(
		newIngestCmd(a),
		newSourcesCmd(a),
		newVersionCmd(a),
	)
	return root
}
