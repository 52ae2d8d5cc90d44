package dataset

import (
	"fmt"

	"github.com/communityhub/importer/internal/detection"
)

// Case is one labeled header row. Expected lists every column that should
// be mapped; columns absent from it are expected to stay unmapped.
type Case struct {
	ID       string   `json:"id" yaml:"id" parquet:"id"`
	Headers  []string `json:"headers" yaml:"headers" parquet:"headers,list"`
	Expected []Label  `json:"expected" yaml:"expected" parquet:"expected,list"`
	Source   string   `json:"source,omitempty" yaml:"source,omitempty" parquet:"source,optional"`
}

// Label pins one column to the field it should be detected as.
type Label struct {
	Index int    `json:"index" yaml:"index" parquet:"index"`
	Field string `json:"field" yaml:"field" parquet:"field"`
}

// File is the top-level shape of a YAML dataset.
type File struct {
	Cases []Case `yaml:"cases"`
}

// Validate checks that every label points at a real column and a known
// field, and that no column or field is labeled twice.
func (c *Case) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("case is missing an id")
	}
	seenField := make(map[detection.Field]bool)
	seenIndex := make(map[int]bool)
	for _, l := range c.Expected {
		f, ok := detection.ParseField(l.Field)
		if !ok {
			return fmt.Errorf("case %s: unknown field %q", c.ID, l.Field)
		}
		if l.Index < 0 || l.Index >= len(c.Headers) {
			return fmt.Errorf("case %s: column %d out of range", c.ID, l.Index)
		}
		if seenField[f] {
			return fmt.Errorf("case %s: field %s labeled twice", c.ID, f)
		}
		if seenIndex[l.Index] {
			return fmt.Errorf("case %s: column %d labeled twice", c.ID, l.Index)
		}
		seenField[f] = true
		seenIndex[l.Index] = true
	}
	return nil
}

// ExpectedField returns the labeled field for column index, if any.
func (c *Case) ExpectedField(index int) (detection.Field, bool) {
	for _, l := range c.Expected {
		if l.Index == index {
			return detection.Field(l.Field), true
		}
	}
	return "", false
}
