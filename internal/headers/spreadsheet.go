package headers

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// readSpreadsheet treats the first non-empty row of the selected sheet as the
// header row.
func readSpreadsheet(r io.Reader, o *options) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("Failed to close spreadsheet", "err", err)
		}
	}()

	sheet := o.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoHeader
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	t := &Table{}
	for _, row := range rows {
		if t.Headers == nil {
			if isBlankRow(row) {
				continue
			}
			t.Headers = row
			if o.headerOnly {
				break
			}
			continue
		}
		if o.rowLimit > 0 && len(t.Rows) >= o.rowLimit {
			break
		}
		t.Rows = append(t.Rows, fitRow(row, len(t.Headers)))
	}

	if t.Headers == nil {
		return nil, ErrNoHeader
	}
	return t, nil
}
