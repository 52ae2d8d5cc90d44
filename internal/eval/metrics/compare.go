package metrics

import (
	"github.com/communityhub/importer/internal/detection"
	"github.com/communityhub/importer/internal/eval/dataset"
)

// Counts tallies mapping outcomes for one field.
type Counts struct {
	TruePositives  int `json:"true_positives" yaml:"truepositives"`
	FalsePositives int `json:"false_positives" yaml:"falsepositives"`
	FalseNegatives int `json:"false_negatives" yaml:"falsenegatives"`
}

func (c *Counts) add(o Counts) {
	c.TruePositives += o.TruePositives
	c.FalsePositives += o.FalsePositives
	c.FalseNegatives += o.FalseNegatives
}

// Mismatch is one column where detection disagreed with the label. An empty
// Expected means the column should have stayed unmapped; an empty Predicted
// means detection left it unmapped.
type Mismatch struct {
	Index     int    `json:"index" yaml:"index"`
	Header    string `json:"header" yaml:"header"`
	Expected  string `json:"expected,omitempty" yaml:"expected,omitempty"`
	Predicted string `json:"predicted,omitempty" yaml:"predicted,omitempty"`
}

// CaseResult scores detection of a single labeled header row.
type CaseResult struct {
	ID         string                    `json:"id" yaml:"id"`
	Headers    []string                  `json:"headers" yaml:"headers"`
	Predicted  []detection.ColumnMapping `json:"predicted" yaml:"predicted"`
	Counts     Counts                    `json:"counts" yaml:"counts"`
	Precision  float64                   `json:"precision" yaml:"precision"`
	Recall     float64                   `json:"recall" yaml:"recall"`
	ExactMatch bool                      `json:"exact_match" yaml:"exactmatch"`
	Mismatches []Mismatch                `json:"mismatches,omitempty" yaml:"mismatches,omitempty"`
	Fields     map[string]Counts         `json:"fields" yaml:"fields"`
}

// CompareCase scores result against the labels in c, column by column.
func CompareCase(c dataset.Case, result detection.Result) CaseResult {
	cr := CaseResult{
		ID:        c.ID,
		Headers:   c.Headers,
		Predicted: result.Mappings,
		Fields:    make(map[string]Counts),
	}

	bump := func(f detection.Field, delta Counts) {
		counts := cr.Fields[string(f)]
		counts.add(delta)
		cr.Fields[string(f)] = counts
		cr.Counts.add(delta)
	}

	for i, header := range c.Headers {
		expected, hasExpected := c.ExpectedField(i)
		predicted, hasPredicted := result.MappedField(i)

		switch {
		case hasExpected && hasPredicted && expected == predicted:
			bump(expected, Counts{TruePositives: 1})
			continue
		case hasExpected && hasPredicted:
			bump(predicted, Counts{FalsePositives: 1})
			bump(expected, Counts{FalseNegatives: 1})
		case hasPredicted:
			bump(predicted, Counts{FalsePositives: 1})
		case hasExpected:
			bump(expected, Counts{FalseNegatives: 1})
		default:
			continue
		}

		cr.Mismatches = append(cr.Mismatches, Mismatch{
			Index:     i,
			Header:    header,
			Expected:  string(expected),
			Predicted: string(predicted),
		})
	}

	cr.Precision = ratio(cr.Counts.TruePositives, cr.Counts.TruePositives+cr.Counts.FalsePositives)
	cr.Recall = ratio(cr.Counts.TruePositives, cr.Counts.TruePositives+cr.Counts.FalseNegatives)
	cr.ExactMatch = len(cr.Mismatches) == 0

	return cr
}

// ratio returns n/d, treating 0/0 as perfect: no predictions means no wrong
// predictions, and no labels means nothing was missed.
func ratio(n, d int) float64 {
	if d == 0 {
		return 1.0
	}
	return float64(n) / float64(d)
}

func f1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}
