package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/medalt/backend/internal/domain"
	_ "modernc.org/sqlite"
)

// ReadSQLite reads every row of table from the SQLite database at dbPath.
// An empty table name selects the first user table by name. NULL cells are missing values.
func ReadSQLite(ctx context.Context, dbPath, table string) (*domain.Table, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	if table == "" {
		table, err = firstUserTable(ctx, db)
		if err != nil {
			return nil, err
		}
	}

	columns, err := tableColumns(ctx, db, table)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", joinIdents(columns), quoteIdent(table))
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", table, err)
	}
	defer rows.Close()

	out := &domain.Table{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		scans := make([]any, len(columns))
		for i := range values {
			scans[i] = &values[i]
		}
		if err := rows.Scan(scans...); err != nil {
			return nil, fmt.Errorf("scan %q: %w", table, err)
		}

		row := make(domain.Row, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		out.Rows = append(out.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func firstUserTable(ctx context.Context, db *sql.DB) (string, error) {
	const q = `SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name LIMIT 1`
	var name string
	if err := db.QueryRowContext(ctx, q).Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: no user tables found", domain.ErrDatasetInvalid)
		}
		return "", err
	}
	return name, nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	q := fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table))
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull int
		var dflt sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: no columns found for table %q", domain.ErrDatasetInvalid, table)
	}
	return cols, nil
}

// normalizeValue turns driver values into strings, numbers or nil
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return normalizeText(string(val))
	case string:
		return normalizeText(val)
	default:
		return val
	}
}

func normalizeText(s string) any {
	if isNullMarker(strings.TrimSpace(s)) {
		return nil
	}
	return s
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func joinIdents(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}
