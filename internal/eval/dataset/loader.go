package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// Loader reads labeled header cases from disk.
type Loader struct {
	datasetPath string
}

// NewLoader creates a new dataset loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// Load reads every case from a YAML, JSONL or Parquet file and validates it.
func (l *Loader) Load() ([]Case, error) {
	return l.LoadSample(0)
}

// LoadSample reads at most limit cases. A limit of 0 or less reads all.
func (l *Loader) LoadSample(limit int) ([]Case, error) {
	ext := strings.ToLower(filepath.Ext(l.datasetPath))

	var (
		cases []Case
		err   error
	)
	switch ext {
	case ".yaml", ".yml":
		cases, err = l.loadYAML()
	case ".jsonl", ".json":
		cases, err = l.loadJSONL()
	case ".parquet":
		cases, err = l.loadParquet()
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .yaml, .jsonl, .parquet)", ext)
	}
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(cases) > limit {
		cases = cases[:limit]
	}

	for i := range cases {
		if err := cases[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid dataset %s: %w", l.datasetPath, err)
		}
	}

	slog.Debug("Loaded dataset", "path", l.datasetPath, "cases", len(cases))
	return cases, nil
}

func (l *Loader) loadYAML() ([]Case, error) {
	data, err := os.ReadFile(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML dataset: %w", err)
	}
	return file.Cases, nil
}

func (l *Loader) loadJSONL() ([]Case, error) {
	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var cases []Case
	scanner := bufio.NewScanner(file)

	const maxCapacity = 1024 * 1024 // 1MB per line
	scanner.Buffer(make([]byte, 64*1024), maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var c Case
		if err := json.Unmarshal(line, &c); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		cases = append(cases, c)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	return cases, nil
}

func (l *Loader) loadParquet() ([]Case, error) {
	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Case](pf)
	defer reader.Close()

	var cases []Case
	for {
		// Fresh batch each time: decoded slices may alias the read buffer.
		rows := make([]Case, 128)
		n, err := reader.Read(rows)
		cases = append(cases, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return cases, nil
}
