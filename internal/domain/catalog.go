package domain

// Row is one record of a tabular dataset keyed by column label.
// A nil value (or an absent key) means the cell is missing.
type Row map[string]any

// Table is an ordered tabular dataset as supplied by a dataset source
type Table struct {
	Columns []string
	Rows    []Row
}

// Empty reports whether the table has no rows
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// ColumnRoles names the columns that hold each catalog attribute.
// Price is empty when the dataset has no price column.
type ColumnRoles struct {
	Name        string `json:"name"`
	Composition string `json:"composition"`
	Price       string `json:"price,omitempty"`
}

// CatalogEntry is one normalized catalog row
type CatalogEntry struct {
	Name        string `json:"name"`
	Composition string `json:"composition"`
	Price       string `json:"price"`
	SearchText  string `json:"-"`
}

// MatchResult is one ranked alternative
type MatchResult struct {
	BrandName  string  `json:"brand_name"`
	Formula    string  `json:"formula"`
	Price      string  `json:"price"`
	MatchScore float64 `json:"match_score"` // percent, one decimal place
}

// ResolvedQuery is the canonical catalog entry a free-text query resolved to
type ResolvedQuery struct {
	TargetBrand string
	TargetIndex int
}

// AlternativesResult is the outcome of a successful alternatives lookup
type AlternativesResult struct {
	Match        string        `json:"match"`
	Alternatives []MatchResult `json:"alternatives"`
}

// SearchRequest represents an alternatives search request
type SearchRequest struct {
	MedicineName string `json:"medicine_name"`
	TopN         int    `json:"top_n,omitempty"`
}

// CatalogStats summarizes the loaded catalog
type CatalogStats struct {
	Entries        int         `json:"entries"`
	DistinctNames  int         `json:"distinct_names"`
	VocabularySize int         `json:"vocabulary_size"`
	Columns        ColumnRoles `json:"columns"`
	Loaded         bool        `json:"loaded"`
}
