package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/communityhub/importer/internal/fetch"
	"github.com/communityhub/importer/internal/headers"
)

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// JSON bodies point at a published sheet instead of carrying one
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		h.handleURLUpload(w, r)
		return
	}

	h.handleFileUpload(w, r)
}

func (h *Handler) handleURLUpload(w http.ResponseWriter, r *http.Request) {
	var request struct {
		URL   string `json:"url"`
		Sheet string `json:"sheet"`
	}

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if !fetch.IsURL(request.URL) {
		h.writeError(w, "url must be an http or https URL", http.StatusBadRequest)
		return
	}

	var opts []headers.Option
	if request.Sheet != "" {
		opts = append(opts, headers.WithSheet(request.Sheet))
	}

	table, err := h.fetcher.Fetch(r.Context(), request.URL, opts...)
	if err != nil {
		h.writeError(w, "Failed to fetch sheet: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.respondWithSession(w, r, table)
}

func (h *Handler) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("files")
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	defer file.Close()

	// Read one byte past the limit so oversize uploads are detectable
	fileData, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(fileData) > maxUploadBytes {
		h.writeError(w, "File too large (max 10MB)", http.StatusBadRequest)
		return
	}

	var opts []headers.Option
	if sheet := r.FormValue("sheet"); sheet != "" {
		opts = append(opts, headers.WithSheet(sheet))
	}

	table, err := headers.Read(header.Filename, bytes.NewReader(fileData), opts...)
	if errors.Is(err, headers.ErrUnsupportedFormat) || errors.Is(err, headers.ErrNoHeader) {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.writeError(w, "Failed to parse file: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.respondWithSession(w, r, table)
}

func (h *Handler) respondWithSession(w http.ResponseWriter, r *http.Request, table *headers.Table) {
	session, err := h.createImportSession(r.Context(), table)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSONStatus(w, http.StatusCreated, session)
}
