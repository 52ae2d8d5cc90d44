package dataset

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/communityhub/importer/internal/detection"
	"gopkg.in/yaml.v3"
)

// LoadPatterns reads a candidate alias table from YAML, keyed by field name:
//
//	email: [email, e-mail, mail]
//	phone: [phone, tel, cell]
//
// Fields the file leaves out keep their default aliases. Aliases are
// lowercased and trimmed to match how headers are normalized.
func LoadPatterns(path string) (detection.Patterns, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read patterns file: %w", err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse patterns file: %w", err)
	}

	patterns := maps.Clone(detection.DefaultPatterns)
	for name, aliases := range raw {
		field, ok := detection.ParseField(name)
		if !ok {
			return nil, fmt.Errorf("patterns file %s: unknown field %q", path, name)
		}
		normalized := make([]string, 0, len(aliases))
		for _, a := range aliases {
			a = strings.ToLower(strings.TrimSpace(a))
			if a != "" && !slices.Contains(normalized, a) {
				normalized = append(normalized, a)
			}
		}
		patterns[field] = normalized
	}

	return patterns, nil
}
