package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/communityhub/importer/internal/contacts"
	"github.com/communityhub/importer/internal/detection"
	"github.com/communityhub/importer/internal/headers"
	"github.com/communityhub/importer/internal/models"
	"github.com/communityhub/importer/internal/storage"
	"github.com/spf13/cobra"
)

func newApplyCmd() *cobra.Command {
	var (
		outPath     string
		mappingPath string
		sessionID   string
		dbPath      string
		sheet       string
		strict      bool
	)

	cmd := &cobra.Command{
		Use:   "apply FILE",
		Short: "Write contact records from FILE using a column mapping",
		Long: `Reads every row of FILE and writes one contact per row to --out, which may
be .jsonl, .csv or .parquet.

The mapping comes from, in order of preference: a confirmed import session
(--session, read from --db), a JSON file with a "mappings" array (--mapping,
for example the output of "importer detect -f json"), or fresh detection.`,
		Example: `  # Detect and write in one go
  importer apply members.csv --out contacts.jsonl

  # Use a hand-edited mapping
  importer detect members.csv -f json > mapping.json
  importer apply members.csv --mapping mapping.json --out contacts.parquet

  # Use a session confirmed through the API
  importer apply members.csv --session 5f1c... --db importer.db --out contacts.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("db") {
				dbPath = os.Getenv("IMPORTER_DB")
			}

			var opts []headers.Option
			if sheet != "" {
				opts = append(opts, headers.WithSheet(sheet))
			}
			table, err := loadTable(cmd.Context(), args[0], opts...)
			if err != nil {
				return err
			}

			mappings, err := resolveApplyMappings(table, mappingPath, sessionID, dbPath)
			if err != nil {
				return err
			}
			if err := contacts.ValidateMappings(mappings, len(table.Headers)); err != nil {
				return fmt.Errorf("invalid mapping: %w", err)
			}

			records, issues := contacts.Build(table, mappings)
			for _, issue := range issues {
				slog.Warn("Row issue", "row", issue.Row, "message", issue.Message, "skipped", issue.Skipped)
			}
			if strict && len(issues) > 0 {
				return fmt.Errorf("%d row issue(s) found; nothing written", len(issues))
			}

			file, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			if err := contacts.Write(outPath, file, records); err != nil {
				file.Close()
				return fmt.Errorf("failed to write contacts: %w", err)
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("failed to close output file: %w", err)
			}

			slog.Info("Contacts written", "out", outPath, "contacts", len(records), "issues", len(issues))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d contacts to %s (%d row issues)\n", len(records), outPath, len(issues))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (.jsonl, .csv or .parquet) (required)")
	cmd.Flags().StringVar(&mappingPath, "mapping", "", "JSON file with a \"mappings\" array")
	cmd.Flags().StringVar(&sessionID, "session", "", "ID of a confirmed import session")
	cmd.Flags().StringVar(&dbPath, "db", "", "Session database for --session (env: IMPORTER_DB)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to read from an .xlsx file (defaults to the first)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail instead of writing when any row has an issue")
	_ = cmd.MarkFlagRequired("out")
	cmd.MarkFlagsMutuallyExclusive("mapping", "session")

	return cmd
}

func resolveApplyMappings(table *headers.Table, mappingPath, sessionID, dbPath string) ([]detection.ColumnMapping, error) {
	switch {
	case sessionID != "":
		if dbPath == "" {
			return nil, errors.New("--session needs a session database (--db or IMPORTER_DB)")
		}
		store, err := storage.Open(dbPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		session, err := store.Get(sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
		}
		if session.Status != models.StatusConfirmed {
			slog.Warn("Session mapping has not been confirmed", "session_id", sessionID, "status", session.Status)
		}
		if len(session.Headers) != len(table.Headers) {
			return nil, fmt.Errorf("session %s has %d columns, %s has %d", sessionID, len(session.Headers), table.Name, len(table.Headers))
		}
		return session.Mappings, nil

	case mappingPath != "":
		data, err := os.ReadFile(mappingPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read mapping file: %w", err)
		}
		var file struct {
			Mappings []detection.ColumnMapping `json:"mappings"`
		}
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse mapping file: %w", err)
		}
		return file.Mappings, nil

	default:
		result := detection.Detect(table.Headers)
		for _, idx := range result.UnmappedColumns {
			slog.Info("Column left unmapped", "index", idx, "header", table.Headers[idx], "suggestions", result.Suggestions[table.Headers[idx]])
		}
		return result.Mappings, nil
	}
}
