package headers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// readParquet uses the leaf column paths of the schema as headers. Nested
// paths are joined with dots and repeated values with "; ".
func readParquet(r io.Reader, o *options) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}

	pf, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	columns := pf.Schema().Columns()
	if len(columns) == 0 {
		return nil, ErrNoHeader
	}

	t := &Table{Headers: make([]string, len(columns))}
	for i, path := range columns {
		t.Headers[i] = strings.Join(path, ".")
	}

	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "columns", len(columns))

	if o.headerOnly {
		return t, nil
	}

	reader := parquet.NewReader(pf)
	defer reader.Close()

	batch := make([]parquet.Row, 128)
	for {
		n, err := reader.ReadRows(batch)
		for _, row := range batch[:n] {
			if o.rowLimit > 0 && len(t.Rows) >= o.rowLimit {
				return t, nil
			}
			t.Rows = append(t.Rows, rowStrings(row, len(columns)))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return t, nil
}

func rowStrings(row parquet.Row, width int) []string {
	cells := make([][]string, width)
	for _, v := range row {
		col := v.Column()
		if col < 0 || col >= width || v.IsNull() {
			continue
		}
		cells[col] = append(cells[col], v.String())
	}
	out := make([]string, width)
	for i, c := range cells {
		out[i] = strings.Join(c, "; ")
	}
	return out
}
