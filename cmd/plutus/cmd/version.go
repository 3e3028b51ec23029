package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/areeshzakir/plutus-data-warehouse/cmd/plutus/app"
)

func newVersionCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "plutus %s (commit %s, built %s by %s)\n",
				a.Version(), a.Commit(), a.Date(), a.BuiltBy())
		},
	}
}
