package evalcmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/communityhub/importer/internal/detection"
	"github.com/communityhub/importer/internal/eval/metrics"
	"github.com/spf13/cobra"
)

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var datasetPath string
	var limit int
	var interactive bool
	var explain bool
	var onlyMismatches bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Walk through dataset cases next to what detection made of them",
		Long: `Inspect cases from a YAML, JSONL or Parquet dataset (or the built-in
cases). For each case prints the headers, the labels and the detected mapping.
With --explain, every mismatched column also shows its score against each
field, which is the quickest way to see which alias to add.`,
		Example: `  # Inspect the built-in cases
  importer eval inspect

  # Step through failing cases with per-field scores
  importer eval inspect --dataset headers.yaml --mismatches --explain --interactive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeInspect(cmd.Context(), cmd.OutOrStdout(), cmd.InOrStdin(), inspectOptions{
				datasetPath:    datasetPath,
				limit:          limit,
				interactive:    interactive,
				explain:        explain,
				onlyMismatches: onlyMismatches,
			})
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path to a labeled dataset (defaults to the built-in cases)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of cases to inspect (0 for all)")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Pause after each case (press Enter to continue)")
	cmd.Flags().BoolVar(&explain, "explain", false, "Show per-field scores for mismatched columns")
	cmd.Flags().BoolVar(&onlyMismatches, "mismatches", false, "Only show cases detection got wrong")

	return cmd
}

type inspectOptions struct {
	datasetPath    string
	limit          int
	interactive    bool
	explain        bool
	onlyMismatches bool
}

func executeInspect(ctx context.Context, w io.Writer, in io.Reader, opts inspectOptions) error {
	cases, err := loadCases(opts.datasetPath, opts.limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Loaded %d cases from %s\n", len(cases), datasetName(opts.datasetPath))
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w)

	reader := bufio.NewReader(in)

	for i, c := range cases {
		select {
		case <-ctx.Done():
			fmt.Fprintln(w, "\nInspection interrupted.")
			return nil
		default:
		}

		result := detection.Detect(c.Headers)
		cr := metrics.CompareCase(c, result)
		if opts.onlyMismatches && cr.ExactMatch {
			continue
		}

		fmt.Fprintf(w, "CASE %d/%d: %s\n", i+1, len(cases), c.ID)
		fmt.Fprintln(w, strings.Repeat("-", 80))
		if c.Source != "" {
			fmt.Fprintf(w, "Source: %s\n", c.Source)
		}

		for idx, header := range c.Headers {
			expected, _ := c.ExpectedField(idx)
			predicted, _ := result.MappedField(idx)
			marker := " "
			if expected != predicted {
				marker = "✗"
			}
			fmt.Fprintf(w, "%s [%d] %-24q expected: %-14s detected: %s\n",
				marker, idx, header, orUnmapped(string(expected)), orUnmapped(string(predicted)))
			if sugg := result.Suggestions[header]; len(sugg) > 0 && predicted == "" {
				fmt.Fprintf(w, "      suggestions: %v\n", sugg)
			}
		}

		if opts.explain && len(cr.Mismatches) > 0 {
			explanations := detection.Explain(c.Headers)
			for _, m := range cr.Mismatches {
				printExplanation(w, explanations[m.Index])
			}
		}

		fmt.Fprintln(w)

		if opts.interactive {
			fmt.Fprint(w, "Press Enter to continue to next case (or Ctrl+C to quit)...")

			inputCh := make(chan struct{})
			go func() {
				_, _ = reader.ReadString('\n')
				close(inputCh)
			}()

			select {
			case <-ctx.Done():
				fmt.Fprintln(w, "\nInspection interrupted.")
				return nil
			case <-inputCh:
				fmt.Fprintln(w)
			}
		}
	}

	return nil
}

func printExplanation(w io.Writer, exp detection.HeaderExplanation) {
	fmt.Fprintf(w, "    scores for %q (normalized %q):\n", exp.Header, exp.Normalized)
	for _, f := range detection.Fields {
		m := exp.Scores[f]
		alias := m.Alias
		if alias == "" {
			alias = "-"
		}
		fmt.Fprintf(w, "      %-14s %.3f  %-9s %s\n", f, m.Confidence, m.Method, alias)
	}
}
