package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/communityhub/importer/internal/contacts"
	"github.com/communityhub/importer/internal/detection"
	"github.com/communityhub/importer/internal/models"
	"github.com/communityhub/importer/internal/storage"
)

type mappingsRequest struct {
	Mappings []detection.ColumnMapping `json:"mappings"`
}

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		sessions, err := h.sessionStore.GetAll()
		if err != nil {
			h.writeError(w, "Failed to list sessions: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if sessions == nil {
			sessions = []*models.ImportSession{}
		}
		h.writeJSON(w, sessions)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleSessionDetail serves /api/sessions/{id} and /api/sessions/{id}/confirm.
func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	sessionID, action, _ := strings.Cut(path, "/")
	if sessionID == "" {
		h.writeError(w, "Session ID is required", http.StatusBadRequest)
		return
	}

	switch action {
	case "":
	case "confirm":
		if r.Method != "POST" {
			h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.confirmSession(w, r, sessionID)
		return
	default:
		h.writeError(w, "Not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case "GET":
		session, ok := h.getSessionOrError(w, sessionID)
		if !ok {
			return
		}
		h.writeJSON(w, session)
	case "PUT":
		h.updateSession(w, r, sessionID)
	case "DELETE":
		err := h.sessionStore.Delete(sessionID)
		if errors.Is(err, storage.ErrNotFound) {
			h.writeError(w, "Session not found", http.StatusNotFound)
			return
		}
		if err != nil {
			h.writeError(w, "Failed to delete session: "+err.Error(), http.StatusInternalServerError)
			return
		}
		slog.Info("Import session deleted", "session_id", sessionID)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// updateSession replaces the draft mappings. Confirmed sessions are frozen.
func (h *Handler) updateSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, ok := h.getSessionOrError(w, sessionID)
	if !ok {
		return
	}
	if session.Status == models.StatusConfirmed {
		h.writeError(w, "Session already confirmed", http.StatusConflict)
		return
	}

	mappings, ok := h.decodeMappings(w, r, session)
	if !ok {
		return
	}

	session.Mappings = mappings
	session.UpdatedAt = time.Now().UTC()
	if err := h.sessionStore.Set(session); err != nil {
		h.writeError(w, "Failed to save session: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, session)
}

// confirmSession locks in the mapping. An empty body confirms the current
// draft as is.
func (h *Handler) confirmSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, ok := h.getSessionOrError(w, sessionID)
	if !ok {
		return
	}

	if r.ContentLength != 0 {
		mappings, ok := h.decodeMappings(w, r, session)
		if !ok {
			return
		}
		session.Mappings = mappings
	} else if err := contacts.ValidateMappings(session.Mappings, len(session.Headers)); err != nil {
		h.writeError(w, "Invalid mappings: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	session.Status = models.StatusConfirmed
	session.UpdatedAt = time.Now().UTC()
	if err := h.sessionStore.Set(session); err != nil {
		h.writeError(w, "Failed to save session: "+err.Error(), http.StatusInternalServerError)
		return
	}

	slog.Info("Import session confirmed", "session_id", session.ID, "mappings", len(session.Mappings))
	h.writeJSON(w, session)
}

func (h *Handler) decodeMappings(w http.ResponseWriter, r *http.Request, session *models.ImportSession) ([]detection.ColumnMapping, bool) {
	var request mappingsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}

	if err := contacts.ValidateMappings(request.Mappings, len(session.Headers)); err != nil {
		h.writeError(w, "Invalid mappings: "+err.Error(), http.StatusUnprocessableEntity)
		return nil, false
	}

	return resolveMappings(session, request.Mappings), true
}
