package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/communityhub/importer/internal/assist"
	"github.com/communityhub/importer/internal/detection"
	"github.com/communityhub/importer/internal/fetch"
	"github.com/communityhub/importer/internal/models"
	"github.com/communityhub/importer/internal/storage"
)

// maxUploadBytes caps uploaded sheets at 10MB.
const maxUploadBytes = 10 * 1024 * 1024

// previewRows is how many data rows a session keeps for the confirmation UI.
const previewRows = 5

type Handler struct {
	sessionStore storage.Store
	detector     *detection.Detector
	assistant    *assist.Assistant
	fetcher      *fetch.Fetcher
}

// New builds a handler. assistant may be nil to disable LLM hints.
func New(store storage.Store, assistant *assist.Assistant) *Handler {
	return &Handler{
		sessionStore: store,
		detector:     detection.NewDetector(),
		assistant:    assistant,
		fetcher:      fetch.NewFetcher(),
	}
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/detect", h.HandleDetect)
	mux.HandleFunc("/api/upload", h.HandleUpload)
	mux.HandleFunc("/api/sessions", h.HandleSessions)
	mux.HandleFunc("/api/sessions/", h.HandleSessionDetail)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Warn(message, "status", code)
	}
	http.Error(w, message, code)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*models.ImportSession, bool) {
	session, err := h.sessionStore.Get(sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		h.writeError(w, "Failed to load session: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return session, true
}
