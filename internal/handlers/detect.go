package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/communityhub/importer/internal/detection"
)

type detectRequest struct {
	Headers []string `json:"headers"`
	Explain bool     `json:"explain"`
}

type detectResponse struct {
	detection.Result
	Explanations []detection.HeaderExplanation `json:"explanations,omitempty"`
}

// HandleDetect runs detection on a header row posted as JSON without
// creating a session.
func (h *Handler) HandleDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request detectRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	response := detectResponse{Result: h.detector.Detect(request.Headers)}
	if request.Explain {
		response.Explanations = h.detector.Explain(request.Headers)
	}

	h.writeJSON(w, response)
}
