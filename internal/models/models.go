package models

import (
	"time"

	"github.com/communityhub/importer/internal/detection"
)

// Session statuses.
const (
	StatusDetected  = "detected"
	StatusConfirmed = "confirmed"
)

// ImportSession tracks one uploaded sheet from detection through manual
// confirmation of its column mapping.
type ImportSession struct {
	ID        string           `json:"id"`
	Filename  string           `json:"filename"`
	Headers   []string         `json:"headers"`
	RowCount  int              `json:"row_count"`
	Preview   [][]string       `json:"preview,omitempty"`
	Detection detection.Result `json:"detection"`
	// Mappings starts as a copy of Detection.Mappings and is replaced when
	// the user confirms.
	Mappings          []detection.ColumnMapping  `json:"mappings"`
	AssistSuggestions map[string]detection.Field `json:"assist_suggestions,omitempty"`
	Status            string                     `json:"status"`
	CreatedAt         time.Time                  `json:"created_at"`
	UpdatedAt         time.Time                  `json:"updated_at"`
}
