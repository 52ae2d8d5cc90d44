package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/communityhub/importer/internal/providers"
)

// Ollama is a provider for a local Ollama server.
type Ollama struct {
	baseURL string
	client  *http.Client
}

// New returns an Ollama provider for OLLAMA_URL, OLLAMA_HOST or
// localhost:11434, in that order.
func New() *Ollama {
	baseURL := os.Getenv("OLLAMA_URL")
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_HOST")
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return NewWithClient(baseURL, &http.Client{})
}

// NewWithClient returns a provider talking to baseURL through client.
func NewWithClient(baseURL string, client *http.Client) *Ollama {
	return &Ollama{baseURL: baseURL, client: client}
}

func (o *Ollama) Name() string {
	return "ollama"
}

// DefaultModel returns OLLAMA_MODEL or mistral-small3.2:24b.
func DefaultModel() string {
	if model := os.Getenv("OLLAMA_MODEL"); model != "" {
		return model
	}
	return "mistral-small3.2:24b"
}

// Complete sends the prompt to /api/generate without streaming.
func (o *Ollama) Complete(ctx context.Context, config providers.Config) (string, error) {
	model := config.Model
	if model == "" {
		model = DefaultModel()
	}

	body := map[string]interface{}{
		"model":  model,
		"prompt": config.Prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": config.Temperature,
		},
	}
	if config.JSON {
		body["format"] = "json"
	}

	requestBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/api/generate", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	return response.Response, nil
}
