// Package headers reads the header row, and optionally the data rows, of a
// tabular contact export.
package headers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for file extensions no reader handles.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrNoHeader is returned when a file has no non-empty first row.
	ErrNoHeader = errors.New("no header row found")
)

// SupportedExtensions lists the file extensions Read understands.
var SupportedExtensions = []string{".csv", ".tsv", ".xlsx", ".parquet"}

// Table is a header row plus the data rows beneath it. Rows are padded or
// truncated to len(Headers).
type Table struct {
	Name    string     `json:"name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows,omitempty"`
}

type options struct {
	rowLimit   int
	sheet      string
	headerOnly bool
}

// Option configures how a table is read.
type Option func(*options)

// WithRowLimit stops reading after n data rows. n <= 0 means no limit.
func WithRowLimit(n int) Option {
	return func(o *options) { o.rowLimit = n }
}

// WithSheet selects a worksheet by name for spreadsheet files.
func WithSheet(name string) Option {
	return func(o *options) { o.sheet = name }
}

// HeaderOnly skips data rows entirely.
func HeaderOnly() Option {
	return func(o *options) { o.headerOnly = true }
}

// Loader reads tables from a file on disk.
type Loader struct {
	path string
}

// NewLoader creates a loader for path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads the whole table.
func (l *Loader) Load(opts ...Option) (*Table, error) {
	if err := checkExtension(l.path); err != nil {
		return nil, err
	}

	slog.Debug("Opening table file", "path", l.path)

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table file: %w", err)
	}
	defer file.Close()

	return Read(filepath.Base(l.path), file, opts...)
}

// LoadHeaders reads only the header row.
func (l *Loader) LoadHeaders() ([]string, error) {
	t, err := l.Load(HeaderOnly())
	if err != nil {
		return nil, err
	}
	return t.Headers, nil
}

// Read parses r according to the extension of name.
func Read(name string, r io.Reader, opts ...Option) (*Table, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if err := checkExtension(name); err != nil {
		return nil, err
	}

	var (
		t   *Table
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		t, err = readDelimited(r, ',', o)
	case ".tsv":
		t, err = readDelimited(r, '\t', o)
	case ".xlsx":
		t, err = readSpreadsheet(r, o)
	case ".parquet":
		t, err = readParquet(r, o)
	}
	if err != nil {
		return nil, err
	}

	t.Name = name
	slog.Debug("Read table", "name", name, "columns", len(t.Headers), "rows", len(t.Rows))
	return t, nil
}

func checkExtension(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(SupportedExtensions, ", "))
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readDelimited(r io.Reader, comma rune, o *options) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read delimited file: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	t := &Table{}
	lineNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse row %d: %w", lineNum+1, err)
		}
		lineNum++

		if t.Headers == nil {
			if isBlankRow(record) {
				continue
			}
			t.Headers = record
			if o.headerOnly {
				break
			}
			continue
		}

		if o.rowLimit > 0 && len(t.Rows) >= o.rowLimit {
			break
		}
		t.Rows = append(t.Rows, fitRow(record, len(t.Headers)))
	}

	if t.Headers == nil {
		return nil, ErrNoHeader
	}
	return t, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// fitRow pads or truncates row to width so every row lines up with the headers.
func fitRow(row []string, width int) []string {
	if len(row) == width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
