package catalog

import (
	"fmt"
	"strings"

	"github.com/medalt/backend/internal/domain"
)

// Default column labels used when a dataset declares no columns at all.
// They are not guaranteed to exist in any row.
const (
	DefaultNameColumn        = "Name"
	DefaultCompositionColumn = "Composition"
)

// columnRule maps a catalog role to the label fragments that identify it
type columnRule struct {
	role     string
	keywords []string
	// fallback is the column position used when no label matches, -1 for none
	fallback int
}

// columnRules are evaluated in order against lowercased column labels.
// Scanning follows the declared column order and the first match wins.
var columnRules = []columnRule{
	{role: "name", keywords: []string{"name", "brand", "product"}, fallback: 0},
	{role: "composition", keywords: []string{"comp", "gener", "formu", "strength", "ingredient"}, fallback: 1},
	{role: "price", keywords: []string{"price", "mrp", "cost"}, fallback: -1},
}

// exactPriceColumn is preferred over keyword matches for the price role
const exactPriceColumn = "Price"

// IdentifyColumns infers which columns hold the display name, the composition text
// and, when present, the price.
//
// An empty column list yields the default labels. A dataset whose composition role
// falls back to a second column it does not have returns domain.ErrDatasetInvalid.
func IdentifyColumns(columns []string) (domain.ColumnRoles, error) {
	if len(columns) == 0 {
		return domain.ColumnRoles{
			Name:        DefaultNameColumn,
			Composition: DefaultCompositionColumn,
		}, nil
	}

	var roles domain.ColumnRoles
	for _, rule := range columnRules {
		col, err := rule.pick(columns)
		if err != nil {
			return domain.ColumnRoles{}, err
		}
		switch rule.role {
		case "name":
			roles.Name = col
		case "composition":
			roles.Composition = col
		case "price":
			roles.Price = col
		}
	}

	for _, c := range columns {
		if c == exactPriceColumn {
			roles.Price = c
			break
		}
	}

	return roles, nil
}

// pick returns the first column matching any keyword, or the fallback column
func (r columnRule) pick(columns []string) (string, error) {
	for _, c := range columns {
		if containsAny(strings.ToLower(c), r.keywords) {
			return c, nil
		}
	}

	if r.fallback < 0 {
		return "", nil
	}
	if r.fallback >= len(columns) {
		return "", fmt.Errorf("%w: no %s column among %d column(s)", domain.ErrDatasetInvalid, r.role, len(columns))
	}
	return columns[r.fallback], nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
