package dataset

import (
	"fmt"
	"io"

	"github.com/medalt/backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX parses the first sheet of a workbook; its first row is the header
func ReadXLSX(r io.Reader) (*domain.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrDatasetInvalid)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &domain.Table{}, nil
	}

	columns := normalizeHeader(rows[0])
	table := &domain.Table{Columns: columns}
	for _, record := range rows[1:] {
		if isBlankRecord(record) {
			continue
		}
		table.Rows = append(table.Rows, makeRow(columns, record))
	}

	return table, nil
}
