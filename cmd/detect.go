package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/communityhub/importer/internal/assist"
	"github.com/communityhub/importer/internal/detection"
	"github.com/communityhub/importer/internal/eval/dataset"
	"github.com/communityhub/importer/internal/headers"
	"github.com/spf13/cobra"
)

type detectOutput struct {
	detection.Result
	Explanations      []detection.HeaderExplanation `json:"explanations,omitempty"`
	AssistSuggestions map[string]detection.Field    `json:"assistSuggestions,omitempty"`
}

func newDetectCmd() *cobra.Command {
	var (
		headerFlags  []string
		sheet        string
		format       string
		explain      bool
		patternsPath string
		assistName   string
		assistModel  string
	)

	cmd := &cobra.Command{
		Use:   "detect [FILE]",
		Short: "Detect which contact field each column holds",
		Long: `Reads the header row of FILE (a path or an http(s) URL) or takes the
headers given with --header, and prints the detected column mapping along
with suggestions for unmapped columns.`,
		Example: `  # Detect from a spreadsheet
  importer detect members.xlsx

  # Detect from literal headers and show per-field scores
  importer detect --header "Full Name" --header "E-mail" --explain

  # Ask an LLM about columns the alias table could not place
  importer detect members.csv --assist ollama`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var hdrs []string
			switch {
			case len(args) == 1 && len(headerFlags) > 0:
				return fmt.Errorf("pass either FILE or --header, not both")
			case len(args) == 1:
				opts := []headers.Option{headers.HeaderOnly()}
				if sheet != "" {
					opts = append(opts, headers.WithSheet(sheet))
				}
				t, err := loadTable(cmd.Context(), args[0], opts...)
				if err != nil {
					return err
				}
				hdrs = t.Headers
			case len(headerFlags) > 0:
				hdrs = headerFlags
			default:
				return fmt.Errorf("a FILE or at least one --header is required")
			}

			detector := detection.NewDetector()
			if patternsPath != "" {
				patterns, err := dataset.LoadPatterns(patternsPath)
				if err != nil {
					return err
				}
				detector = detection.NewDetector(detection.WithPatterns(patterns))
			}

			out := detectOutput{Result: detector.Detect(hdrs)}
			if explain {
				out.Explanations = detector.Explain(hdrs)
			}

			assistant, err := assist.NewFromEnv(assistName, assistModel)
			if err != nil {
				return err
			}
			if assistant != nil {
				suggestions, err := assistant.Suggest(cmd.Context(), hdrs, out.Result)
				if err != nil {
					slog.Warn("Assist suggestions failed", "provider", assistant.Provider(), "error", err)
				} else {
					out.AssistSuggestions = suggestions
				}
			}

			switch format {
			case "json":
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(out)
			case "table":
				return printDetectTable(cmd.OutOrStdout(), hdrs, out)
			default:
				return fmt.Errorf("unsupported format: %s (supported: json, table)", format)
			}
		},
	}

	cmd.Flags().StringArrayVar(&headerFlags, "header", nil, "Header to detect (repeatable, in column order)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to read from an .xlsx file (defaults to the first)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")
	cmd.Flags().BoolVar(&explain, "explain", false, "Include every header's score against every field")
	cmd.Flags().StringVar(&patternsPath, "patterns", "", "YAML alias table to use instead of the defaults")
	cmd.Flags().StringVar(&assistName, "assist", "", "LLM provider for unmapped columns: gemini, openai or ollama (env: ASSIST_PROVIDER)")
	cmd.Flags().StringVar(&assistModel, "assist-model", "", "Model for --assist (env: ASSIST_MODEL)")

	return cmd
}

func printDetectTable(w io.Writer, hdrs []string, out detectOutput) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tHEADER\tFIELD\tCONFIDENCE\tSUGGESTIONS")

	for i, h := range hdrs {
		field, confidence, suggestions := "-", "-", ""
		for _, m := range out.Mappings {
			if m.SourceIndex == i {
				field = string(m.TargetField)
				confidence = fmt.Sprintf("%.2f", m.Confidence)
			}
		}
		if field == "-" {
			if s := out.Suggestions[h]; len(s) > 0 {
				suggestions = fmt.Sprint(s)
			}
			if f, ok := out.AssistSuggestions[h]; ok {
				suggestions += fmt.Sprintf(" assist:%s", f)
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i, h, field, confidence, suggestions)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, exp := range out.Explanations {
		fmt.Fprintf(w, "\n%q (normalized %q)\n", exp.Header, exp.Normalized)
		for _, f := range detection.Fields {
			m := exp.Scores[f]
			fmt.Fprintf(w, "  %-14s %.3f  %s %s\n", f, m.Confidence, m.Method, m.Alias)
		}
	}
	return nil
}
