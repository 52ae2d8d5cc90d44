package contacts

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/communityhub/importer/internal/detection"
	"github.com/parquet-go/parquet-go"
)

// Write encodes contacts in the format implied by name's extension.
func Write(name string, w io.Writer, contacts []Contact) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jsonl", ".json":
		return WriteJSONL(w, contacts)
	case ".csv":
		return WriteCSV(w, contacts)
	case ".parquet":
		return WriteParquet(w, contacts)
	default:
		return fmt.Errorf("unsupported output format: %s (supported: .jsonl, .csv, .parquet)", filepath.Ext(name))
	}
}

// WriteJSONL writes one JSON object per line.
func WriteJSONL(w io.Writer, contacts []Contact) error {
	encoder := json.NewEncoder(w)
	for i, c := range contacts {
		if err := encoder.Encode(c); err != nil {
			return fmt.Errorf("failed to encode contact %d: %w", i, err)
		}
	}
	return nil
}

// WriteCSV writes a header row of canonical field names followed by one row
// per contact.
func WriteCSV(w io.Writer, contacts []Contact) error {
	writer := csv.NewWriter(w)

	header := make([]string, len(detection.Fields))
	for i, f := range detection.Fields {
		header[i] = string(f)
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, c := range contacts {
		row := make([]string, len(detection.Fields))
		for i, f := range detection.Fields {
			row[i] = c.Get(f)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteParquet writes contacts as a single parquet file.
func WriteParquet(w io.Writer, contacts []Contact) error {
	pw := parquet.NewGenericWriter[Contact](w)
	if _, err := pw.Write(contacts); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
