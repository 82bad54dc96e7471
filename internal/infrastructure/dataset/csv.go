package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/medalt/backend/internal/domain"
)

const utf8BOM = "\uFEFF"

// nullMarkers are the cell values spreadsheet and dataframe tools write for a
// missing value.
var nullMarkers = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// isNullMarker reports whether a trimmed cell stands for a missing value
func isNullMarker(cell string) bool {
	_, ok := nullMarkers[cell]
	return ok
}

// ReadDelimited parses a header-first delimited file. Empty cells and null markers
// such as "NA" or "N/A" are missing values, and short rows leave their trailing
// columns missing.
func ReadDelimited(r io.Reader, delimiter rune) (*domain.Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &domain.Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := normalizeHeader(header)
	table := &domain.Table{Columns: columns}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if isBlankRecord(record) {
			continue
		}
		table.Rows = append(table.Rows, makeRow(columns, record))
	}

	return table, nil
}

// normalizeHeader trims labels, strips a leading BOM and names blank or repeated
// labels the way spreadsheet tools do ("Unnamed: 3", "Price.1").
func normalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = fmt.Sprintf("%s.%d", h, n+1)
		} else {
			seen[h] = 0
		}
		columns[i] = h
	}
	return columns
}

func makeRow(columns, record []string) domain.Row {
	row := make(domain.Row, len(columns))
	for i, col := range columns {
		if i >= len(record) {
			row[col] = nil
			continue
		}
		cell := strings.TrimSpace(record[i])
		if isNullMarker(cell) {
			row[col] = nil
			continue
		}
		row[col] = cell
	}
	return row
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
