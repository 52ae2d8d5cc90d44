package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "importer",
		Short: "Contact spreadsheet importer with automatic column detection",
		Long: `Importer maps the header row of a contact spreadsheet (CSV, TSV, XLSX or
Parquet) onto the canonical contact fields: name, email, phone, organization,
role, location and notes.

It can print the detected mapping, write contact records from a confirmed
mapping, serve an HTTP API for reviewing imports, and score the detector
against labeled datasets.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			if verbose {
				slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose (debug) logging")

	// Add subcommands
	cmd.AddCommand(newDetectCmd())
	cmd.AddCommand(newApplyCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newEvalCmd())

	return cmd
}
