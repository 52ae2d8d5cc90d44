package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/communityhub/importer/internal/detection"
	"github.com/communityhub/importer/internal/headers"
	"github.com/communityhub/importer/internal/models"
	"github.com/google/uuid"
)

// createImportSession runs detection over an uploaded table and stores the
// resulting session.
func (h *Handler) createImportSession(ctx context.Context, table *headers.Table) (*models.ImportSession, error) {
	result := h.detector.Detect(table.Headers)

	now := time.Now().UTC()
	session := &models.ImportSession{
		ID:        uuid.NewString(),
		Filename:  table.Name,
		Headers:   table.Headers,
		RowCount:  len(table.Rows),
		Preview:   table.Rows[:min(previewRows, len(table.Rows))],
		Detection: result,
		Mappings:  result.Mappings,
		Status:    models.StatusDetected,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if h.assistant != nil && len(result.UnmappedColumns) > 0 {
		slog.Info("Requesting assist suggestions", "session_id", session.ID, "provider", h.assistant.Provider())
		suggestions, err := h.assistant.Suggest(ctx, table.Headers, result)
		if err != nil {
			// Hints are optional; the detection result stands on its own.
			slog.Warn("Assist suggestions failed", "session_id", session.ID, "error", err)
		} else {
			session.AssistSuggestions = suggestions
		}
	}

	if err := h.sessionStore.Set(session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	slog.Info("Import session created",
		"session_id", session.ID,
		"filename", session.Filename,
		"columns", len(session.Headers),
		"mapped", len(result.Mappings),
		"unmapped", len(result.UnmappedColumns))

	return session, nil
}

// resolveMappings fills in headers and confidences for user-supplied
// mappings. A pair the detector also proposed keeps its score; anything the
// user picked by hand is recorded at full confidence.
func resolveMappings(session *models.ImportSession, in []detection.ColumnMapping) []detection.ColumnMapping {
	detected := make(map[int]detection.ColumnMapping, len(session.Detection.Mappings))
	for _, m := range session.Detection.Mappings {
		detected[m.SourceIndex] = m
	}

	out := make([]detection.ColumnMapping, 0, len(in))
	for _, m := range in {
		resolved := detection.ColumnMapping{
			SourceIndex: m.SourceIndex,
			TargetField: m.TargetField,
			Confidence:  1.0,
		}
		if m.SourceIndex >= 0 && m.SourceIndex < len(session.Headers) {
			resolved.SourceHeader = session.Headers[m.SourceIndex]
		}
		if d, ok := detected[m.SourceIndex]; ok && d.TargetField == m.TargetField {
			resolved.Confidence = d.Confidence
		}
		out = append(out, resolved)
	}
	return out
}
