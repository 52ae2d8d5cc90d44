package providers

import (
	"context"
)

// Config is one completion request.
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
	// JSON asks the backend to constrain its output to a JSON object when it
	// supports that.
	JSON bool
}

// Provider sends a prompt to an LLM backend and returns the raw reply text.
type Provider interface {
	Complete(ctx context.Context, config Config) (string, error)
	Name() string
}
