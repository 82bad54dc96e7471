// Package catalog turns raw tabular data into the immutable medicine catalog.
package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/medalt/backend/internal/domain"
	"golang.org/x/text/unicode/norm"
)

const (
	// MissingComposition replaces absent composition values
	MissingComposition = "Generic Medicine"

	// PriceNotAvailable is reported for entries without a price
	PriceNotAvailable = "N/A"
)

// Catalog is the ordered, read-only list of catalog entries.
// An entry's position is stable and joins it to its vector space row.
type Catalog struct {
	entries []domain.CatalogEntry
	roles   domain.ColumnRoles
	names   []string
	first   map[string]int
}

// Normalize builds a Catalog from raw rows using the identified column roles.
// Rows without a name are skipped; the returned count reports how many.
func Normalize(table *domain.Table, roles domain.ColumnRoles) (*Catalog, int, error) {
	c := &Catalog{
		roles: roles,
		first: make(map[string]int),
	}
	if table.Empty() {
		return c, 0, nil
	}

	if !hasColumn(table.Columns, roles.Name) || !hasColumn(table.Columns, roles.Composition) {
		return nil, 0, fmt.Errorf("%w: columns %q/%q not present", domain.ErrDatasetInvalid, roles.Name, roles.Composition)
	}

	skipped := 0
	c.entries = make([]domain.CatalogEntry, 0, len(table.Rows))
	for _, row := range table.Rows {
		name := normalizeName(Text(row[roles.Name]))
		if name == "" {
			skipped++
			continue
		}

		composition := Text(row[roles.Composition])
		if row[roles.Composition] == nil {
			composition = MissingComposition
		}

		price := PriceNotAvailable
		if roles.Price != "" && row[roles.Price] != nil {
			price = Text(row[roles.Price])
		}

		if _, seen := c.first[name]; !seen {
			c.first[name] = len(c.entries)
			c.names = append(c.names, name)
		}
		c.entries = append(c.entries, domain.CatalogEntry{
			Name:        name,
			Composition: composition,
			Price:       price,
			SearchText:  strings.ToLower(composition),
		})
	}

	return c, skipped, nil
}

// Len returns the number of entries
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entry returns the entry at position i
func (c *Catalog) Entry(i int) domain.CatalogEntry {
	return c.entries[i]
}

// Roles returns the column roles the catalog was built with
func (c *Catalog) Roles() domain.ColumnRoles {
	return c.roles
}

// Names returns the distinct entry names in first-seen order.
// The returned slice must not be modified.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	return c.names
}

// IndexOf returns the first position whose name equals name exactly, or -1
func (c *Catalog) IndexOf(name string) int {
	if c == nil {
		return -1
	}
	if i, ok := c.first[name]; ok {
		return i
	}
	return -1
}

// SearchTexts returns the lowercased composition text of every entry, by position
func (c *Catalog) SearchTexts() []string {
	out := make([]string, c.Len())
	for i, e := range c.entries {
		out[i] = e.SearchText
	}
	return out
}

// Text coerces a raw cell value to its display text. Missing values become "".
func Text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}

// normalizeName applies NFKC and collapses whitespace runs so visually identical
// names compare equal
func normalizeName(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

func hasColumn(columns []string, col string) bool {
	for _, c := range columns {
		if c == col {
			return true
		}
	}
	return false
}
