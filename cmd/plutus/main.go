// Package main provides the entry point for the plutus CLI tool.
package main

import (
	"context"
	"os"

	"github.com/areeshzakir/plutus-data-warehouse/cmd/plutus/app"
	"github.com/areeshzakir/plutus-data-warehouse/cmd/plutus/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	application, err := app.New(version, commit, date, builtBy)
	if err != nil {
		app.ExitOnError(err)
	}

	// Cancel on SIGINT/SIGTERM so in-flight fetches stop cleanly.
	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	if err := cmd.Execute(ctx, application, os.Args[1:]); err != nil {
		app.ExitOnError(err)
	}
}
