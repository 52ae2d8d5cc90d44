package evalcmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/communityhub/importer/internal/detection"
	"github.com/communityhub/importer/internal/eval/results"
	"github.com/spf13/cobra"
)

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	var resultsPath string
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a detailed report for a saved evaluation run",
		Example: `  # Per-case text report
  importer eval report --results evals/eval-2025-01-02_15-04-05.yaml

  # One CSV row per case
  importer eval report --results evals/eval-2025-01-02_15-04-05.yaml --format csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(cmd.OutOrStdout(), resultsPath, format)
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "", "Path to a YAML results file written by eval run (required)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or csv")
	_ = cmd.MarkFlagRequired("results")

	return cmd
}

func executeReport(w io.Writer, resultsPath, format string) error {
	spec, err := results.LoadFromYAML(resultsPath)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	switch format {
	case "text":
		return printTextReport(w, spec)
	case "json":
		return printJSONReport(w, spec)
	case "csv":
		return printCSVReport(w, spec)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printTextReport(w io.Writer, spec *results.EvalSpec) error {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Column Detection Evaluation Report")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Dataset:    %s\n", spec.Config.DatasetPath)
	if spec.Config.PatternsPath != "" {
		fmt.Fprintf(w, "Patterns:   %s\n", spec.Config.PatternsPath)
	}
	fmt.Fprintf(w, "Thresholds: accept > %.2f, candidate > %.2f, suggest > %.2f\n",
		spec.Config.AcceptThreshold, spec.Config.CandidateThreshold, spec.Config.SuggestThreshold)

	spec.Summary.PrintSummary(w)

	fmt.Fprintln(w, "\nDetailed Results:")
	fmt.Fprintln(w, "========================================")

	for i, cr := range spec.Summary.Cases {
		status := "exact"
		if !cr.ExactMatch {
			status = fmt.Sprintf("%d mismatch(es)", len(cr.Mismatches))
		}
		fmt.Fprintf(w, "\n[%d] %s: %s\n", i+1, cr.ID, status)
		fmt.Fprintf(w, "  Headers:   %s\n", strings.Join(cr.Headers, " | "))
		fmt.Fprintf(w, "  Precision: %.2f%%  Recall: %.2f%%\n", cr.Precision*100, cr.Recall*100)

		for _, m := range cr.Mismatches {
			fmt.Fprintf(w, "    column %d %q: expected %s, detected %s\n",
				m.Index, m.Header, orUnmapped(m.Expected), orUnmapped(m.Predicted))
		}
	}

	return nil
}

func printJSONReport(w io.Writer, spec *results.EvalSpec) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(spec.Summary)
}

func printCSVReport(w io.Writer, spec *results.EvalSpec) error {
	writer := csv.NewWriter(w)

	header := []string{"ID", "Columns", "Precision", "Recall", "Exact", "Mismatches"}
	for _, f := range detection.Fields {
		header = append(header, "Field_"+string(f))
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, cr := range spec.Summary.Cases {
		mismatches := make([]string, 0, len(cr.Mismatches))
		for _, m := range cr.Mismatches {
			mismatches = append(mismatches, fmt.Sprintf("%d:%s->%s", m.Index, orUnmapped(m.Expected), orUnmapped(m.Predicted)))
		}

		row := []string{
			cr.ID,
			fmt.Sprintf("%d", len(cr.Headers)),
			fmt.Sprintf("%.4f", cr.Precision),
			fmt.Sprintf("%.4f", cr.Recall),
			fmt.Sprintf("%t", cr.ExactMatch),
			strings.Join(mismatches, ";"),
		}

		// The column header each field was detected from, if any
		for _, f := range detection.Fields {
			col := ""
			for _, m := range cr.Predicted {
				if m.TargetField == f {
					col = m.SourceHeader
					break
				}
			}
			row = append(row, col)
		}

		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func orUnmapped(field string) string {
	if field == "" {
		return "(unmapped)"
	}
	return field
}
