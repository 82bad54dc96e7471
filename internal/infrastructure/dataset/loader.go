// Package dataset loads the medicine catalog's raw table from CSV, TSV, XLSX or
// SQLite sources, local or fetched over HTTP.
package dataset

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/medalt/backend/internal/domain"
	"github.com/medalt/backend/internal/logging"
)

// Options configures a Loader
type Options struct {
	// SQLiteTable selects the table of a SQLite source; empty means the first user table
	SQLiteTable string
	// Fetcher downloads http(s) sources; nil uses a default RemoteFetcher
	Fetcher *RemoteFetcher
}

// Loader reads a dataset from a path or URL, choosing the parser by extension
type Loader struct {
	sqliteTable string
	fetcher     *RemoteFetcher
}

var _ domain.DatasetLoader = (*Loader)(nil)

// NewLoader creates a new dataset loader
func NewLoader(opts Options) *Loader {
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = NewRemoteFetcher()
	}
	return &Loader{
		sqliteTable: opts.SQLiteTable,
		fetcher:     fetcher,
	}
}

// Load reads the table at source
func (l *Loader) Load(ctx context.Context, source string) (*domain.Table, error) {
	log := logging.Component("dataset")

	if isRemote(source) {
		u, err := url.Parse(source)
		if err != nil {
			return nil, fmt.Errorf("parse dataset url: %w", err)
		}
		ext := strings.ToLower(path.Ext(u.Path))

		data, err := l.fetcher.Fetch(ctx, source)
		if err != nil {
			return nil, err
		}
		log.Info().Str("source", source).Int("bytes", len(data)).Msg("dataset downloaded")
		return parseBytes(ext, data)
	}

	ext := strings.ToLower(filepath.Ext(source))
	switch ext {
	case ".db", ".sqlite", ".sqlite3":
		return ReadSQLite(ctx, source, l.sqliteTable)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return parseBytes(ext, data)
}

func parseBytes(ext string, data []byte) (*domain.Table, error) {
	switch ext {
	case ".csv":
		return ReadDelimited(bytes.NewReader(data), ',')
	case ".tsv":
		return ReadDelimited(bytes.NewReader(data), '\t')
	case ".xlsx", ".xlsm":
		return ReadXLSX(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
