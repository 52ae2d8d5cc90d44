package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/communityhub/importer/internal/detection"
	"github.com/parquet-go/parquet-go"
)

const yamlCases = `cases:
  - id: basic
    headers: ["Full Name", "E-mail", "Phone Number"]
    expected:
      - {index: 0, field: name}
      - {index: 1, field: email}
      - {index: 2, field: phone}
  - id: junk
    source: survey export
    headers: ["xyz123"]
`

const jsonlCases = `{"id":"basic","headers":["Name","Email"],"expected":[{"index":0,"field":"name"},{"index":1,"field":"email"}]}

{"id":"junk","headers":["xyz123"],"expected":[]}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	path := "./cases.yaml"
	loader := NewLoader(path)

	if loader.datasetPath != path {
		t.Errorf("Expected path %s, got %s", path, loader.datasetPath)
	}
}

func TestLoadYAML(t *testing.T) {
	cases, err := NewLoader(writeFile(t, "cases.yaml", yamlCases)).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cases) != 2 {
		t.Fatalf("Expected 2 cases, got %d", len(cases))
	}
	if cases[0].ID != "basic" || len(cases[0].Expected) != 3 {
		t.Errorf("Unexpected first case: %+v", cases[0])
	}
	if cases[1].Source != "survey export" {
		t.Errorf("Expected source to be read, got %q", cases[1].Source)
	}
	if f, ok := cases[0].ExpectedField(2); !ok || f != detection.FieldPhone {
		t.Errorf("Expected column 2 labeled phone, got %q %v", f, ok)
	}
	if _, ok := cases[1].ExpectedField(0); ok {
		t.Error("Expected junk column to be unlabeled")
	}
}

func TestLoadJSONL(t *testing.T) {
	cases, err := NewLoader(writeFile(t, "cases.jsonl", jsonlCases)).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cases) != 2 {
		t.Fatalf("Expected 2 cases (blank line skipped), got %d", len(cases))
	}
	if cases[0].Headers[1] != "Email" {
		t.Errorf("Expected Email header, got %q", cases[0].Headers[1])
	}
}

func TestLoadParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.parquet")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := parquet.NewGenericWriter[Case](f)
	want := Builtin()
	if _, err := w.Write(want); err != nil {
		t.Fatalf("Failed to write parquet rows: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close parquet writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	cases, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cases) != len(want) {
		t.Fatalf("Expected %d cases, got %d", len(want), len(cases))
	}
	for i := range want {
		if cases[i].ID != want[i].ID {
			t.Errorf("Case %d: expected ID %s, got %s", i, want[i].ID, cases[i].ID)
		}
		if strings.Join(cases[i].Headers, "|") != strings.Join(want[i].Headers, "|") {
			t.Errorf("Case %d: expected headers %v, got %v", i, want[i].Headers, cases[i].Headers)
		}
		if len(cases[i].Expected) != len(want[i].Expected) {
			t.Errorf("Case %d: expected %d labels, got %d", i, len(want[i].Expected), len(cases[i].Expected))
		}
	}
}

func TestLoadSample(t *testing.T) {
	cases, err := NewLoader(writeFile(t, "cases.yaml", yamlCases)).LoadSample(1)
	if err != nil {
		t.Fatalf("LoadSample failed: %v", err)
	}
	if len(cases) != 1 {
		t.Errorf("Expected 1 case, got %d", len(cases))
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"unsupported format", "cases.txt", "", "unsupported file format"},
		{"bad yaml", "cases.yaml", "cases: [", "failed to parse YAML"},
		{"bad json", "cases.jsonl", "{", "line 1"},
		{"unknown field", "cases.yaml", "cases:\n  - id: a\n    headers: [Handle]\n    expected: [{index: 0, field: twitter}]\n", "unknown field"},
		{"index out of range", "cases.yaml", "cases:\n  - id: a\n    headers: [Name]\n    expected: [{index: 3, field: name}]\n", "out of range"},
		{"missing id", "cases.yaml", "cases:\n  - headers: [Name]\n", "missing an id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(writeFile(t, tt.file, tt.content)).Load()
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := NewLoader(filepath.Join(t.TempDir(), "missing.yaml")).Load(); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       Case
		wantErr bool
	}{
		{"valid", Case{ID: "a", Headers: []string{"Name"}, Expected: []Label{{Index: 0, Field: "name"}}}, false},
		{"no labels", Case{ID: "a", Headers: []string{"xyz"}}, false},
		{"field twice", Case{ID: "a", Headers: []string{"Name", "Full Name"}, Expected: []Label{{Index: 0, Field: "name"}, {Index: 1, Field: "name"}}}, true},
		{"column twice", Case{ID: "a", Headers: []string{"Name"}, Expected: []Label{{Index: 0, Field: "name"}, {Index: 0, Field: "notes"}}}, true},
		{"negative index", Case{ID: "a", Headers: []string{"Name"}, Expected: []Label{{Index: -1, Field: "name"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBuiltinCasesAreValid(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range Builtin() {
		if err := c.Validate(); err != nil {
			t.Errorf("Builtin case invalid: %v", err)
		}
		if seen[c.ID] {
			t.Errorf("Duplicate builtin case ID %s", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestLoadPatterns(t *testing.T) {
	path := writeFile(t, "patterns.yaml", "email:\n  - Email\n  - ' E-Mail '\n  - email\nnotes: [handle, twitter]\n")

	patterns, err := LoadPatterns(path)
	if err != nil {
		t.Fatalf("LoadPatterns failed: %v", err)
	}

	if got := strings.Join(patterns[detection.FieldEmail], ","); got != "email,e-mail" {
		t.Errorf("Expected normalized email aliases, got %s", got)
	}
	if got := strings.Join(patterns[detection.FieldNotes], ","); got != "handle,twitter" {
		t.Errorf("Expected replaced notes aliases, got %s", got)
	}
	if len(patterns[detection.FieldPhone]) != len(detection.DefaultPatterns[detection.FieldPhone]) {
		t.Error("Expected phone aliases to keep their defaults")
	}
	if len(detection.DefaultPatterns[detection.FieldNotes]) == 2 {
		t.Error("Expected default patterns to be left untouched")
	}

	if _, err := LoadPatterns(writeFile(t, "bad.yaml", "twitter: [handle]\n")); err == nil {
		t.Error("Expected error for unknown field")
	}
}
