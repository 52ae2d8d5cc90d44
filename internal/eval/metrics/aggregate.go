package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/communityhub/importer/internal/detection"
)

// FieldStats is the micro-averaged score for one canonical field.
type FieldStats struct {
	Counts    `yaml:",inline"`
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1        float64 `json:"f1" yaml:"f1"`
}

// Summary aggregates case results over a whole dataset.
type Summary struct {
	TotalCases     int                   `json:"total_cases" yaml:"totalcases"`
	ExactMatches   int                   `json:"exact_matches" yaml:"exactmatches"`
	ExactMatchRate float64               `json:"exact_match_rate" yaml:"exactmatchrate"`
	Precision      float64               `json:"precision" yaml:"precision"`
	Recall         float64               `json:"recall" yaml:"recall"`
	F1             float64               `json:"f1" yaml:"f1"`
	Fields         map[string]FieldStats `json:"fields" yaml:"fields"`
	Cases          []CaseResult          `json:"cases" yaml:"cases"`
	EvaluationDate time.Time             `json:"evaluation_date" yaml:"evaluationdate"`
	DatasetPath    string                `json:"dataset_path" yaml:"datasetpath"`
}

// Aggregate micro-averages precision and recall over every column of every
// case. Every canonical field gets an entry, even if no case mentions it.
func Aggregate(results []CaseResult, datasetPath string) *Summary {
	s := &Summary{
		TotalCases:     len(results),
		Fields:         make(map[string]FieldStats, len(detection.Fields)),
		Cases:          results,
		EvaluationDate: time.Now(),
		DatasetPath:    datasetPath,
	}

	var total Counts
	perField := make(map[string]Counts, len(detection.Fields))
	for _, r := range results {
		if r.ExactMatch {
			s.ExactMatches++
		}
		total.add(r.Counts)
		for f, c := range r.Fields {
			counts := perField[f]
			counts.add(c)
			perField[f] = counts
		}
	}

	for _, f := range detection.Fields {
		c := perField[string(f)]
		s.Fields[string(f)] = newFieldStats(c)
	}

	if s.TotalCases > 0 {
		s.ExactMatchRate = float64(s.ExactMatches) / float64(s.TotalCases)
	}
	s.Precision = ratio(total.TruePositives, total.TruePositives+total.FalsePositives)
	s.Recall = ratio(total.TruePositives, total.TruePositives+total.FalseNegatives)
	s.F1 = f1(s.Precision, s.Recall)

	return s
}

func newFieldStats(c Counts) FieldStats {
	p := ratio(c.TruePositives, c.TruePositives+c.FalsePositives)
	r := ratio(c.TruePositives, c.TruePositives+c.FalseNegatives)
	return FieldStats{Counts: c, Precision: p, Recall: r, F1: f1(p, r)}
}

// PrintSummary writes a human-readable summary to w.
func (s *Summary) PrintSummary(w io.Writer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 70))
	fmt.Fprintln(w, "COLUMN DETECTION EVALUATION SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Evaluation Date: %s\n", s.EvaluationDate.Format("2006-01-02 15:04:05"))
	if s.DatasetPath != "" {
		fmt.Fprintf(w, "Dataset: %s\n", s.DatasetPath)
	}
	fmt.Fprintf(w, "Cases: %d\n", s.TotalCases)
	fmt.Fprintf(w, "Exact Matches: %d (%.1f%%)\n", s.ExactMatches, s.ExactMatchRate*100)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "FIELD-LEVEL SCORES")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "%-14s %5s %5s %5s %10s %8s %8s\n", "Field", "TP", "FP", "FN", "Precision", "Recall", "F1")
	for _, f := range detection.Fields {
		st := s.Fields[string(f)]
		fmt.Fprintf(w, "%-14s %5d %5d %5d %9.1f%% %7.1f%% %7.3f\n",
			f, st.TruePositives, st.FalsePositives, st.FalseNegatives, st.Precision*100, st.Recall*100, st.F1)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "OVERALL")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Precision: %.2f%%\n", s.Precision*100)
	fmt.Fprintf(w, "Recall:    %.2f%%\n", s.Recall*100)
	fmt.Fprintf(w, "F1:        %.3f\n", s.F1)
	fmt.Fprintln(w, strings.Repeat("=", 70))
}

// SaveToJSON saves the summary to a JSON file
func (s *Summary) SaveToJSON(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("failed to encode results to JSON: %w", err)
	}

	return nil
}
