package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/communityhub/importer/internal/providers"
)

func TestComplete(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Write([]byte(`{"response":"{}"}`))
	}))
	defer server.Close()

	t.Setenv("OLLAMA_MODEL", "")
	reply, err := NewWithClient(server.URL, server.Client()).Complete(context.Background(), providers.Config{Prompt: "p", JSON: true})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if reply != "{}" {
		t.Errorf("Unexpected reply %q", reply)
	}
	if got["model"] != "mistral-small3.2:24b" {
		t.Errorf("Expected default model, got %v", got["model"])
	}
	if got["format"] != "json" {
		t.Errorf("Expected json format, got %v", got["format"])
	}
	if got["stream"] != false {
		t.Errorf("Expected stream=false, got %v", got["stream"])
	}
}

func TestComplete_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := NewWithClient(server.URL, server.Client()).Complete(context.Background(), providers.Config{}); err == nil {
		t.Error("Expected error for non-200 status")
	}
}
