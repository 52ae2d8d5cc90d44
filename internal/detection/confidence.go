package detection

import "strings"

const (
	// AcceptThreshold is the confidence a field must exceed to be mapped
	// automatically.
	AcceptThreshold = 0.5
	// CandidateThreshold is the confidence a field must exceed to be tracked
	// as the best match while scanning.
	CandidateThreshold = 0.3
	// SuggestThreshold is the confidence a field must exceed to be offered as
	// a manual suggestion for an unmapped column.
	SuggestThreshold = 0.1

	substringConfidence = 0.8
)

// Match methods reported by Score.
const (
	MethodExact     = "exact"
	MethodSubstring = "substring"
	MethodFuzzy     = "fuzzy"
	MethodNone      = "none"
)

// Match is the strongest alias hit for one header against one field.
type Match struct {
	Confidence float64 `json:"confidence"`
	Alias      string  `json:"alias,omitempty"`
	Method     string  `json:"method"`
}

// Confidence scores a normalised header against a field's aliases.
func Confidence(header string, aliases []string) float64 {
	return Score(header, aliases).Confidence
}

// Score returns the best alias match for header. An exact hit returns at
// once; containment in either direction is worth a flat 0.8; anything else
// falls back to edit-distance similarity. A blank header never matches.
func Score(header string, aliases []string) Match {
	best := Match{Method: MethodNone}
	if header == "" {
		return best
	}

	for _, alias := range aliases {
		if header == alias {
			return Match{Confidence: 1.0, Alias: alias, Method: MethodExact}
		}

		candidate := Match{Alias: alias}
		if strings.Contains(header, alias) || strings.Contains(alias, header) {
			candidate.Confidence = substringConfidence
			candidate.Method = MethodSubstring
		} else {
			candidate.Confidence = Similarity(header, alias)
			candidate.Method = MethodFuzzy
		}

		if candidate.Confidence > best.Confidence {
			best = candidate
		}
	}

	return best
}

// normalizeHeader lowercases and trims a raw header.
func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}
