package detection

import (
	"slices"
)

// ColumnMapping assigns one source column to a canonical field.
type ColumnMapping struct {
	SourceIndex  int     `json:"sourceIndex" yaml:"sourceIndex"`
	TargetField  Field   `json:"targetField" yaml:"targetField"`
	Confidence   float64 `json:"confidence" yaml:"confidence"`
	SourceHeader string  `json:"sourceHeader" yaml:"sourceHeader"`
}

// Result is the outcome of one detection run. Mappings and UnmappedColumns
// together cover every column index exactly once.
type Result struct {
	Mappings        []ColumnMapping    `json:"mappings" yaml:"mappings"`
	UnmappedColumns []int              `json:"unmappedColumns" yaml:"unmappedColumns"`
	Suggestions     map[string][]Field `json:"suggestions" yaml:"suggestions"`
}

// MappedField returns the field assigned to column index, if any.
func (r Result) MappedField(index int) (Field, bool) {
	for _, m := range r.Mappings {
		if m.SourceIndex == index {
			return m.TargetField, true
		}
	}
	return "", false
}

// Detector maps header rows onto canonical fields.
type Detector struct {
	patterns Patterns
}

// Option configures a Detector.
type Option func(*Detector)

// WithPatterns replaces the alias table. Fields missing from p have no
// aliases and therefore never match.
func WithPatterns(p Patterns) Option {
	return func(d *Detector) {
		d.patterns = p
	}
}

// NewDetector returns a Detector using DefaultPatterns unless overridden.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{patterns: DefaultPatterns}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDetector = NewDetector()

// Detect runs the default detector over headers.
func Detect(headers []string) Result {
	return defaultDetector.Detect(headers)
}

// Detect walks the headers left to right and greedily gives each column the
// best still-unclaimed field. Earlier decisions are never revisited, so when
// two columns want the same field the first one wins.
func (d *Detector) Detect(headers []string) Result {
	result := Result{
		Mappings:        []ColumnMapping{},
		UnmappedColumns: []int{},
		Suggestions:     map[string][]Field{},
	}

	claimed := make(map[Field]bool, len(Fields))

	for i, raw := range headers {
		header := normalizeHeader(raw)

		var bestField Field
		bestConfidence := 0.0
		found := false

		for _, field := range Fields {
			if claimed[field] {
				continue
			}
			confidence := Confidence(header, d.patterns[field])
			if confidence > CandidateThreshold && confidence > bestConfidence {
				bestField = field
				bestConfidence = confidence
				found = true
			}
		}

		if found && bestConfidence > AcceptThreshold {
			result.Mappings = append(result.Mappings, ColumnMapping{
				SourceIndex:  i,
				TargetField:  bestField,
				Confidence:   bestConfidence,
				SourceHeader: raw,
			})
			claimed[bestField] = true
			continue
		}

		result.UnmappedColumns = append(result.UnmappedColumns, i)

		var suggested []Field
		for _, field := range Fields {
			if claimed[field] {
				continue
			}
			if Confidence(header, d.patterns[field]) > SuggestThreshold {
				suggested = append(suggested, field)
			}
		}
		if len(suggested) > 0 {
			slices.Sort(suggested)
			result.Suggestions[raw] = suggested
		}
	}

	return result
}

// HeaderExplanation lists how one header scored against every field.
type HeaderExplanation struct {
	Index      int             `json:"index"`
	Header     string          `json:"header"`
	Normalized string          `json:"normalized"`
	Scores     map[Field]Match `json:"scores"`
}

// Explain scores every header against every field without claiming
// anything. It is meant for tuning the alias table.
func (d *Detector) Explain(headers []string) []HeaderExplanation {
	out := make([]HeaderExplanation, 0, len(headers))
	for i, raw := range headers {
		header := normalizeHeader(raw)
		exp := HeaderExplanation{
			Index:      i,
			Header:     raw,
			Normalized: header,
			Scores:     make(map[Field]Match, len(Fields)),
		}
		for _, field := range Fields {
			exp.Scores[field] = Score(header, d.patterns[field])
		}
		out = append(out, exp)
	}
	return out
}

// Explain runs the default detector's Explain.
func Explain(headers []string) []HeaderExplanation {
	return defaultDetector.Explain(headers)
}
