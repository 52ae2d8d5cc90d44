// Package assist asks an LLM to guess canonical fields for columns the
// detector left unmapped. Its answers are kept apart from the detection
// result and only ever shown as hints.
package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/communityhub/importer/internal/detection"
	"github.com/communityhub/importer/internal/gemini"
	"github.com/communityhub/importer/internal/ollama"
	"github.com/communityhub/importer/internal/openai"
	"github.com/communityhub/importer/internal/providers"
)

// Assistant wraps a provider with the column-mapping prompt.
type Assistant struct {
	provider providers.Provider
	model    string
}

// New returns an assistant backed by provider.
func New(provider providers.Provider, model string) *Assistant {
	return &Assistant{provider: provider, model: model}
}

// NewFromEnv builds an assistant for the named provider. An empty name falls
// back to ASSIST_PROVIDER; if that is empty too, nil is returned and
// assistance is disabled.
func NewFromEnv(name, model string) (*Assistant, error) {
	if name == "" {
		name = os.Getenv("ASSIST_PROVIDER")
	}
	if model == "" {
		model = os.Getenv("ASSIST_MODEL")
	}

	var p providers.Provider
	switch name {
	case "":
		return nil, nil
	case "gemini":
		p = gemini.New()
	case "openai":
		p = openai.New()
	case "ollama":
		p = ollama.New()
	default:
		return nil, fmt.Errorf("unsupported assist provider: %s (supported: gemini, openai, ollama)", name)
	}

	return New(p, model), nil
}

// Provider returns the backend name.
func (a *Assistant) Provider() string {
	return a.provider.Name()
}

// Suggest proposes a field for each unmapped header. Only fields the detector
// left unclaimed are accepted; anything else in the reply is dropped.
func (a *Assistant) Suggest(ctx context.Context, headers []string, result detection.Result) (map[string]detection.Field, error) {
	if len(result.UnmappedColumns) == 0 {
		return map[string]detection.Field{}, nil
	}

	claimed := make(map[detection.Field]bool)
	for _, m := range result.Mappings {
		claimed[m.TargetField] = true
	}
	var open []detection.Field
	for _, f := range detection.Fields {
		if !claimed[f] {
			open = append(open, f)
		}
	}
	if len(open) == 0 {
		return map[string]detection.Field{}, nil
	}

	unmapped := make([]string, 0, len(result.UnmappedColumns))
	for _, idx := range result.UnmappedColumns {
		if idx >= 0 && idx < len(headers) && strings.TrimSpace(headers[idx]) != "" {
			unmapped = append(unmapped, headers[idx])
		}
	}
	if len(unmapped) == 0 {
		return map[string]detection.Field{}, nil
	}

	prompt := buildPrompt(unmapped, open)
	reply, err := a.provider.Complete(ctx, providers.Config{
		Model:       a.model,
		Temperature: 0.1,
		Prompt:      prompt,
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestions from %s: %w", a.provider.Name(), err)
	}

	suggestions, err := parseReply(reply, unmapped, open)
	if err != nil {
		return nil, err
	}

	slog.Info("Assist suggestions received", "provider", a.provider.Name(), "unmapped", len(unmapped), "suggested", len(suggestions))
	return suggestions, nil
}

func buildPrompt(unmapped []string, open []detection.Field) string {
	headerJSON, _ := json.Marshal(unmapped)
	fieldNames := make([]string, len(open))
	for i, f := range open {
		fieldNames[i] = string(f)
	}

	return fmt.Sprintf(`You are helping a community organizer import a contact spreadsheet.

These column headers could not be matched automatically:
%s

Available contact fields:
%s

For each header that clearly holds one of the available fields, pick that field.
Use each field at most once. Leave out headers that fit none of them.

Respond with ONLY a JSON object mapping header to field, for example:
{"Cell #": "phone"}`, headerJSON, strings.Join(fieldNames, ", "))
}

// parseReply decodes the model's JSON object, tolerating markdown fences.
func parseReply(reply string, unmapped []string, open []detection.Field) (map[string]detection.Field, error) {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")
	reply = strings.TrimSpace(reply)

	var raw map[string]string
	if err := json.Unmarshal([]byte(reply), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse assist reply: %w", err)
	}

	wanted := make(map[string]bool, len(unmapped))
	for _, h := range unmapped {
		wanted[h] = true
	}
	allowed := make(map[detection.Field]bool, len(open))
	for _, f := range open {
		allowed[f] = true
	}

	out := make(map[string]detection.Field)
	used := make(map[detection.Field]bool)
	// Walk headers in column order so a field the model assigned twice goes
	// to the leftmost column.
	for _, h := range unmapped {
		name, ok := raw[h]
		if !ok {
			continue
		}
		f, ok := detection.ParseField(strings.ToLower(strings.TrimSpace(name)))
		if !ok || !allowed[f] || used[f] {
			slog.Debug("Dropping assist suggestion", "header", h, "field", name)
			continue
		}
		out[h] = f
		used[f] = true
	}
	for h := range raw {
		if !wanted[h] {
			slog.Debug("Dropping assist suggestion for unknown header", "header", h)
		}
	}

	return out, nil
}
