package headers

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
)

func TestReadDelimited(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		input    string
		headers  []string
		rows     [][]string
		rowLimit int
	}{
		{
			name:    "simple csv",
			file:    "contacts.csv",
			input:   "Full Name,E-mail,Phone Number\nAda Lovelace,ada@example.org,555-0100\n",
			headers: []string{"Full Name", "E-mail", "Phone Number"},
			rows:    [][]string{{"Ada Lovelace", "ada@example.org", "555-0100"}},
		},
		{
			name:    "byte order mark is stripped",
			file:    "contacts.csv",
			input:   "\xEF\xBB\xBFName,Email\n",
			headers: []string{"Name", "Email"},
		},
		{
			name:    "leading blank rows skipped",
			file:    "contacts.csv",
			input:   ",,\n\nName,Email\nGrace,grace@example.org\n",
			headers: []string{"Name", "Email"},
			rows:    [][]string{{"Grace", "grace@example.org"}},
		},
		{
			name:    "ragged rows are padded and truncated",
			file:    "contacts.csv",
			input:   "Name,Email,Notes\nA\nB,b@example.org,x,extra\n",
			headers: []string{"Name", "Email", "Notes"},
			rows:    [][]string{{"A", "", ""}, {"B", "b@example.org", "x"}},
		},
		{
			name:    "tab separated",
			file:    "CONTACTS.TSV",
			input:   "Name\tRole\nLin\tChair\n",
			headers: []string{"Name", "Role"},
			rows:    [][]string{{"Lin", "Chair"}},
		},
		{
			name:     "row limit",
			file:     "contacts.csv",
			input:    "Name\na\nb\nc\n",
			headers:  []string{"Name"},
			rows:     [][]string{{"a"}, {"b"}},
			rowLimit: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Read(tt.file, strings.NewReader(tt.input), WithRowLimit(tt.rowLimit))
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if !reflect.DeepEqual(table.Headers, tt.headers) {
				t.Errorf("Expected headers %q, got %q", tt.headers, table.Headers)
			}
			if len(table.Rows) != len(tt.rows) || (len(tt.rows) > 0 && !reflect.DeepEqual(table.Rows, tt.rows)) {
				t.Errorf("Expected rows %q, got %q", tt.rows, table.Rows)
			}
			if table.Name != tt.file {
				t.Errorf("Expected name %s, got %s", tt.file, table.Name)
			}
		})
	}
}

func TestRead_HeaderOnly(t *testing.T) {
	table, err := Read("c.csv", strings.NewReader("Name,Email\na,b\n"), HeaderOnly())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(table.Rows) != 0 {
		t.Errorf("Expected no rows, got %d", len(table.Rows))
	}
}

func TestRead_Errors(t *testing.T) {
	_, err := Read("contacts.txt", strings.NewReader("Name\n"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}

	_, err = Read("empty.csv", strings.NewReader(""))
	if !errors.Is(err, ErrNoHeader) {
		t.Errorf("Expected ErrNoHeader for empty file, got %v", err)
	}

	_, err = Read("blank.csv", strings.NewReader(",,\n , \n"))
	if !errors.Is(err, ErrNoHeader) {
		t.Errorf("Expected ErrNoHeader for blank rows, got %v", err)
	}
}

func TestLoader(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "members.csv")
	if err := os.WriteFile(path, []byte("Name,Organization\nSam,Lehigh\n"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	loader := NewLoader(path)
	table, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if table.Name != "members.csv" {
		t.Errorf("Expected name members.csv, got %s", table.Name)
	}
	if len(table.Rows) != 1 {
		t.Errorf("Expected 1 row, got %d", len(table.Rows))
	}

	hdrs, err := loader.LoadHeaders()
	if err != nil {
		t.Fatalf("LoadHeaders failed: %v", err)
	}
	if !reflect.DeepEqual(hdrs, []string{"Name", "Organization"}) {
		t.Errorf("Unexpected headers %q", hdrs)
	}
}

func TestLoader_Errors(t *testing.T) {
	if _, err := NewLoader("/nonexistent/path/file.csv").Load(); err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
	if _, err := NewLoader("notes.docx").Load(); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestReadSpreadsheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow("Sheet1", "A2", &[]any{"Name", "Email", "Phone"}); err != nil {
		t.Fatalf("Failed to write header row: %v", err)
	}
	if err := f.SetSheetRow("Sheet1", "A3", &[]any{"Mae", "mae@example.org", "555-0199"}); err != nil {
		t.Fatalf("Failed to write data row: %v", err)
	}
	if err := f.SetSheetRow("Sheet1", "A4", &[]any{"Ida"}); err != nil {
		t.Fatalf("Failed to write data row: %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to write workbook: %v", err)
	}

	table, err := Read("book.xlsx", bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !reflect.DeepEqual(table.Headers, []string{"Name", "Email", "Phone"}) {
		t.Errorf("Unexpected headers %q", table.Headers)
	}
	want := [][]string{{"Mae", "mae@example.org", "555-0199"}, {"Ida", "", ""}}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Errorf("Expected rows %q, got %q", want, table.Rows)
	}

	if _, err := Read("book.xlsx", bytes.NewReader(buf.Bytes()), WithSheet("Missing")); err == nil {
		t.Error("Expected error for missing sheet")
	}
}

type parquetContact struct {
	FullName string `parquet:"full_name"`
	Email    string `parquet:"email"`
	Age      int64  `parquet:"age"`
}

func TestReadParquet(t *testing.T) {
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[parquetContact](&buf)
	if _, err := w.Write([]parquetContact{
		{FullName: "Ada", Email: "ada@example.org", Age: 36},
		{FullName: "Grace", Email: "grace@example.org", Age: 85},
	}); err != nil {
		t.Fatalf("Failed to write parquet rows: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close parquet writer: %v", err)
	}

	table, err := Read("members.parquet", bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(table.Headers) != 3 {
		t.Fatalf("Expected 3 headers, got %q", table.Headers)
	}
	for _, h := range []string{"full_name", "email", "age"} {
		if !slices.Contains(table.Headers, h) {
			t.Errorf("Expected header %s in %q", h, table.Headers)
		}
	}
	if len(table.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(table.Rows))
	}

	nameCol := slices.Index(table.Headers, "full_name")
	ageCol := slices.Index(table.Headers, "age")
	if table.Rows[1][nameCol] != "Grace" {
		t.Errorf("Expected Grace, got %q", table.Rows[1][nameCol])
	}
	if table.Rows[0][ageCol] != "36" {
		t.Errorf("Expected 36, got %q", table.Rows[0][ageCol])
	}

	limited, err := Read("members.parquet", bytes.NewReader(buf.Bytes()), WithRowLimit(1))
	if err != nil {
		t.Fatalf("Read with limit failed: %v", err)
	}
	if len(limited.Rows) != 1 {
		t.Errorf("Expected 1 row with limit, got %d", len(limited.Rows))
	}
}
