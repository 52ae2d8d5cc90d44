package evalcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/communityhub/importer/internal/detection"
	"github.com/communityhub/importer/internal/eval/dataset"
	"github.com/communityhub/importer/internal/eval/metrics"
	"github.com/communityhub/importer/internal/eval/results"
	"github.com/spf13/cobra"
)

type runOptions struct {
	datasetPath  string
	patternsPath string
	outputDir    string
	outputJSON   string
	sampleSize   int
	concurrency  int
}

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Score column detection against a labeled dataset",
		Long: `Runs column detection over every labeled header row in a dataset and
reports precision and recall per canonical field.

Datasets may be YAML, JSONL or Parquet. Without --dataset the built-in cases
are used. Pass --patterns to measure a candidate alias table instead of the
default one.`,
		Example: `  # Score the built-in cases
  importer eval run

  # Score a dataset with a candidate alias table
  importer eval run --dataset headers.yaml --patterns candidate.yaml

  # Also write the summary as JSON
  importer eval run --dataset headers.jsonl --output-json summary.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := executeRun(cmd.Context(), cmd.OutOrStdout(), opts)
			return err
		},
	}

	cmd.Flags().StringVar(&opts.datasetPath, "dataset", "", "Path to a labeled dataset (.yaml, .jsonl or .parquet)")
	cmd.Flags().StringVar(&opts.patternsPath, "patterns", "", "Path to a YAML alias table to evaluate instead of the defaults")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "evals", "Directory for the timestamped YAML results file")
	cmd.Flags().StringVar(&opts.outputJSON, "output-json", "", "Optional path for a JSON copy of the summary")
	cmd.Flags().IntVar(&opts.sampleSize, "sample", 0, "Number of cases to evaluate (0 for all)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 4, "Number of cases scored in parallel")

	return cmd
}

func executeRun(ctx context.Context, out io.Writer, opts runOptions) (string, error) {
	cases, err := loadCases(opts.datasetPath, opts.sampleSize)
	if err != nil {
		return "", err
	}

	detector := detection.NewDetector()
	if opts.patternsPath != "" {
		patterns, err := dataset.LoadPatterns(opts.patternsPath)
		if err != nil {
			return "", err
		}
		detector = detection.NewDetector(detection.WithPatterns(patterns))
	}

	slog.Info("Starting evaluation run", "dataset", datasetName(opts.datasetPath), "cases", len(cases), "patterns", opts.patternsPath)

	caseResults, err := scoreCases(ctx, detector, cases, opts.concurrency)
	if err != nil {
		return "", err
	}

	summary := metrics.Aggregate(caseResults, datasetName(opts.datasetPath))
	summary.PrintSummary(out)

	path, err := results.SaveToYAML(opts.outputDir, results.NewEvalSpec(summary, opts.patternsPath))
	if err != nil {
		return "", fmt.Errorf("failed to save results: %w", err)
	}
	fmt.Fprintf(out, "\nResults saved to: %s\n", path)

	if opts.outputJSON != "" {
		if err := summary.SaveToJSON(opts.outputJSON); err != nil {
			return "", err
		}
		fmt.Fprintf(out, "JSON summary saved to: %s\n", opts.outputJSON)
	}

	fmt.Fprintf(out, "\nGenerate a detailed report with:\n")
	fmt.Fprintf(out, "  importer eval report --results %s\n", path)

	return path, nil
}

// scoreCases runs detection for every case with bounded parallelism and
// keeps results in dataset order.
func scoreCases(ctx context.Context, detector *detection.Detector, cases []dataset.Case, concurrency int) ([]metrics.CaseResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	out := make([]metrics.CaseResult, len(cases))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)

	for i, c := range cases {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, fmt.Errorf("evaluation interrupted: %w", err)
		}

		wg.Add(1)
		go func(idx int, c dataset.Case) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			slog.Debug("Scoring case", "id", c.ID, "progress", fmt.Sprintf("%d/%d", idx+1, len(cases)))
			out[idx] = metrics.CompareCase(c, detector.Detect(c.Headers))
		}(i, c)
	}

	wg.Wait()
	return out, nil
}

func loadCases(datasetPath string, sampleSize int) ([]dataset.Case, error) {
	if datasetPath == "" {
		cases := dataset.Builtin()
		if sampleSize > 0 && sampleSize < len(cases) {
			cases = cases[:sampleSize]
		}
		return cases, nil
	}

	cases, err := dataset.NewLoader(datasetPath).LoadSample(sampleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	return cases, nil
}

func datasetName(path string) string {
	if path == "" {
		return "builtin"
	}
	return path
}
