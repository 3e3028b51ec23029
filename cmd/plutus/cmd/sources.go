package cmd

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/areeshzakir/plutus-data-warehouse/cmd/plutus/app"
	"github.com/areeshzakir/plutus-data-warehouse/internal/cmd/output"
	"github.com/areeshzakir/plutus-data-warehouse/internal/config"
)

func newSourcesCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the configured sources",
		RunE: func(_ *cobra.Command, _ []string) error {
			file, err := config.Load(a.Config().SourcesFile)
			if err != nil {
				return err
			}

			format := output.DetectFormat(a.Config().Output)
			formatter := output.NewFormatter(format)
			if format != output.FormatTable {
				return formatter.Format(os.Stdout, file.Sources)
			}

			data := output.Data{
				Headers: []string{"Name", "Kind", "Table", "Identity", "Timestamp", "Columns", "Aggregated"},
			}
			for _, s := range file.Sources {
				data.Rows = append(data.Rows, []string{
					s.Name,
					s.Kind,
					s.Table,
					string(s.Identity.Strategy),
					s.Timestamp.Column,
					strconv.Itoa(len(s.Columns)),
					strconv.FormatBool(s.Aggregate != nil),
				})
			}
			return formatter.Format(os.Stdout, data)
		},
	}
}
