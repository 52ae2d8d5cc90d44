package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/communityhub/importer/internal/detection"
	"github.com/communityhub/importer/internal/eval/metrics"
	"gopkg.in/yaml.v3"
)

// EvalConfig records what was evaluated so runs can be compared later.
type EvalConfig struct {
	DatasetPath        string  `yaml:"datasetpath"`
	PatternsPath       string  `yaml:"patternspath,omitempty"`
	SampleSize         int     `yaml:"samplesize"`
	AcceptThreshold    float64 `yaml:"acceptthreshold"`
	CandidateThreshold float64 `yaml:"candidatethreshold"`
	SuggestThreshold   float64 `yaml:"suggestthreshold"`
	Timestamp          string  `yaml:"timestamp"`
}

// EvalSpec represents the complete evaluation file.
type EvalSpec struct {
	Config  EvalConfig       `yaml:"config"`
	Summary *metrics.Summary `yaml:"summary"`
}

// NewEvalSpec wraps a summary with the run configuration.
func NewEvalSpec(summary *metrics.Summary, patternsPath string) *EvalSpec {
	return &EvalSpec{
		Config: EvalConfig{
			DatasetPath:        summary.DatasetPath,
			PatternsPath:       patternsPath,
			SampleSize:         summary.TotalCases,
			AcceptThreshold:    detection.AcceptThreshold,
			CandidateThreshold: detection.CandidateThreshold,
			SuggestThreshold:   detection.SuggestThreshold,
			Timestamp:          summary.EvaluationDate.Format("2006-01-02_15-04-05"),
		},
		Summary: summary,
	}
}

// SaveToYAML writes spec to dir/eval-<timestamp>.yaml and returns the path.
func SaveToYAML(dir string, spec *EvalSpec) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", dir, err)
	}

	timestamp := spec.Config.Timestamp
	if timestamp == "" {
		timestamp = time.Now().Format("2006-01-02_15-04-05")
	}
	filename := filepath.Join(dir, fmt.Sprintf("eval-%s.yaml", timestamp))

	data, err := yaml.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	return filename, nil
}

// LoadFromYAML reads an evaluation file written by SaveToYAML.
func LoadFromYAML(path string) (*EvalSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var spec EvalSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse results file: %w", err)
	}
	if spec.Summary == nil {
		return nil, fmt.Errorf("results file %s has no summary", path)
	}
	return &spec, nil
}
