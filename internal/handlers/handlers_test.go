package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/communityhub/importer/internal/assist"
	"github.com/communityhub/importer/internal/detection"
	"github.com/communityhub/importer/internal/models"
	"github.com/communityhub/importer/internal/providers"
	"github.com/communityhub/importer/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "Full Name,Email,Twitter Handle\nAda Lovelace,ada@example.org,@ada\nGrace Hopper,grace@example.org,@grace\n"

type stubProvider struct {
	reply string
}

func (s *stubProvider) Complete(ctx context.Context, config providers.Config) (string, error) {
	return s.reply, nil
}

func (s *stubProvider) Name() string { return "stub" }

func newTestServer(t *testing.T, assistant *assist.Assistant) (*httptest.Server, storage.Store) {
	t.Helper()
	store := storage.NewMemory()
	mux := http.NewServeMux()
	New(store, assistant).Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, store
}

func upload(t *testing.T, srv *httptest.Server, filename, content string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/api/upload", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func uploadSession(t *testing.T, srv *httptest.Server) models.ImportSession {
	t.Helper()
	resp := upload(t, srv, "members.csv", sampleCSV)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var session models.ImportSession
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	return session
}

func doJSON(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandleDetect(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	t.Run("maps headers", func(t *testing.T) {
		resp := doJSON(t, "POST", srv.URL+"/api/detect", `{"headers":["Name","E-mail","Phone Number"]}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		var result detection.Result
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		require.Len(t, result.Mappings, 3)
		assert.Equal(t, detection.FieldName, result.Mappings[0].TargetField)
		assert.Equal(t, detection.FieldEmail, result.Mappings[1].TargetField)
		assert.Equal(t, detection.FieldPhone, result.Mappings[2].TargetField)
		assert.Empty(t, result.UnmappedColumns)
	})

	t.Run("explain", func(t *testing.T) {
		resp := doJSON(t, "POST", srv.URL+"/api/detect", `{"headers":["Contact"],"explain":true}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Mappings     []detection.ColumnMapping     `json:"mappings"`
			Explanations []detection.HeaderExplanation `json:"explanations"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Explanations, 1)
		assert.Equal(t, "contact", body.Explanations[0].Normalized)
		assert.Len(t, body.Explanations[0].Scores, len(detection.Fields))
	})

	t.Run("empty headers", func(t *testing.T) {
		resp := doJSON(t, "POST", srv.URL+"/api/detect", `{"headers":[]}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var raw map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
		assert.JSONEq(t, `[]`, string(raw["mappings"]))
		assert.JSONEq(t, `[]`, string(raw["unmappedColumns"]))
		assert.JSONEq(t, `{}`, string(raw["suggestions"]))
	})

	t.Run("invalid json", func(t *testing.T) {
		resp := doJSON(t, "POST", srv.URL+"/api/detect", `{"headers":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("wrong method", func(t *testing.T) {
		resp := doJSON(t, "GET", srv.URL+"/api/detect", "")
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestHandleUpload(t *testing.T) {
	t.Run("csv creates session", func(t *testing.T) {
		srv, store := newTestServer(t, nil)
		session := uploadSession(t, srv)

		assert.NotEmpty(t, session.ID)
		assert.Equal(t, "members.csv", session.Filename)
		assert.Equal(t, []string{"Full Name", "Email", "Twitter Handle"}, session.Headers)
		assert.Equal(t, 2, session.RowCount)
		assert.Len(t, session.Preview, 2)
		assert.Equal(t, models.StatusDetected, session.Status)
		require.Len(t, session.Mappings, 2)
		assert.Equal(t, []int{2}, session.Detection.UnmappedColumns)
		assert.Contains(t, session.Detection.Suggestions, "Twitter Handle")
		assert.Empty(t, session.AssistSuggestions)

		stored, err := store.Get(session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.Filename, stored.Filename)
	})

	t.Run("assist suggestions stored beside detection", func(t *testing.T) {
		assistant := assist.New(&stubProvider{reply: `{"Twitter Handle": "notes"}`}, "")
		srv, _ := newTestServer(t, assistant)
		session := uploadSession(t, srv)

		assert.Equal(t, map[string]detection.Field{"Twitter Handle": detection.FieldNotes}, session.AssistSuggestions)
		assert.Len(t, session.Mappings, 2)
		assert.Equal(t, []int{2}, session.Detection.UnmappedColumns)
	})

	t.Run("assist failure does not fail upload", func(t *testing.T) {
		assistant := assist.New(&stubProvider{reply: "not json"}, "")
		srv, _ := newTestServer(t, assistant)
		session := uploadSession(t, srv)

		assert.Empty(t, session.AssistSuggestions)
		assert.Len(t, session.Mappings, 2)
	})

	t.Run("url", func(t *testing.T) {
		sheets := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(sampleCSV))
		}))
		defer sheets.Close()

		srv, _ := newTestServer(t, nil)
		resp := doJSON(t, "POST", srv.URL+"/api/upload", `{"url":"`+sheets.URL+`/export?format=csv"}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var session models.ImportSession
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
		assert.Equal(t, "export.csv", session.Filename)
		assert.Equal(t, 2, session.RowCount)
		assert.Len(t, session.Mappings, 2)
	})

	t.Run("url not http", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)
		resp := doJSON(t, "POST", srv.URL+"/api/upload", `{"url":"ftp://example.org/a.csv"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unsupported format", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)
		resp := upload(t, srv, "members.txt", sampleCSV)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("empty file", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)
		resp := upload(t, srv, "members.csv", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing file", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)
		resp := doJSON(t, "POST", srv.URL+"/api/upload", `{}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("wrong method", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)
		resp := doJSON(t, "GET", srv.URL+"/api/upload", "")
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestSessionLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	session := uploadSession(t, srv)
	detailURL := srv.URL + "/api/sessions/" + session.ID

	resp := doJSON(t, "GET", srv.URL+"/api/sessions", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []models.ImportSession
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, session.ID, list[0].ID)

	resp = doJSON(t, "GET", detailURL, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Override: keep the name column and send the handle to notes.
	resp = doJSON(t, "PUT", detailURL, `{"mappings":[{"sourceIndex":0,"targetField":"name"},{"sourceIndex":2,"targetField":"notes"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.ImportSession
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	require.Len(t, updated.Mappings, 2)
	assert.Equal(t, "Twitter Handle", updated.Mappings[1].SourceHeader)
	assert.Equal(t, 1.0, updated.Mappings[1].Confidence)
	assert.Equal(t, models.StatusDetected, updated.Status)

	resp = doJSON(t, "POST", detailURL+"/confirm", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var confirmed models.ImportSession
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&confirmed))
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)
	assert.Len(t, confirmed.Mappings, 2)

	resp = doJSON(t, "PUT", detailURL, `{"mappings":[]}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, "DELETE", detailURL, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, "GET", detailURL, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, "DELETE", detailURL, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestConfirmRejectsInvalidMappings(t *testing.T) {
	srv, store := newTestServer(t, nil)
	session := uploadSession(t, srv)
	confirmURL := srv.URL + "/api/sessions/" + session.ID + "/confirm"

	tests := []struct {
		name string
		body string
		want int
	}{
		{"duplicate field", `{"mappings":[{"sourceIndex":0,"targetField":"name"},{"sourceIndex":1,"targetField":"name"}]}`, http.StatusUnprocessableEntity},
		{"column out of range", `{"mappings":[{"sourceIndex":7,"targetField":"email"}]}`, http.StatusUnprocessableEntity},
		{"unknown field", `{"mappings":[{"sourceIndex":0,"targetField":"twitter"}]}`, http.StatusUnprocessableEntity},
		{"bad json", `{"mappings":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, "POST", confirmURL, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}

	stored, err := store.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDetected, stored.Status)
}

func TestSessionRoutes(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"unknown session", "GET", "/api/sessions/missing", http.StatusNotFound},
		{"confirm unknown session", "POST", "/api/sessions/missing/confirm", http.StatusNotFound},
		{"confirm wrong method", "GET", "/api/sessions/missing/confirm", http.StatusMethodNotAllowed},
		{"unknown action", "GET", "/api/sessions/missing/export", http.StatusNotFound},
		{"missing id", "GET", "/api/sessions/", http.StatusBadRequest},
		{"list wrong method", "POST", "/api/sessions", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, tt.method, srv.URL+tt.path, "")
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}

	t.Run("empty list", func(t *testing.T) {
		resp := doJSON(t, "GET", srv.URL+"/api/sessions", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var raw json.RawMessage
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
		assert.JSONEq(t, `[]`, string(raw))
	})
}

func TestHealthcheck(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp := doJSON(t, "GET", srv.URL+"/healthcheck", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "OK", buf.String())
}
