package usecase

import (
	"fmt"

	"github.com/medalt/backend/internal/catalog"
	"github.com/medalt/backend/internal/domain"
	"github.com/medalt/backend/internal/logging"
	"github.com/medalt/backend/internal/vectorspace"
)

// minDatasetColumns is the fewest columns a dataset needs to yield a catalog
const minDatasetColumns = 2

// Engine holds the catalog and its vector space. It is built once before any query
// is served and is read-only afterwards, so it is shared by reference without locking.
type Engine struct {
	catalog *catalog.Catalog
	index   *vectorspace.Index
}

// EmptyEngine returns an engine with no catalog; every query reports an empty dataset
func EmptyEngine() *Engine {
	return &Engine{}
}

// BuildEngine infers column roles, normalizes the catalog and fits the vector space.
//
// An invalid dataset yields an empty engine together with the error, so callers can
// log the problem and keep serving.
func BuildEngine(table *domain.Table) (*Engine, error) {
	log := logging.Component("engine")

	if table.Empty() {
		log.Warn().Msg("dataset has no rows, serving with an empty catalog")
		return EmptyEngine(), nil
	}
	if len(table.Columns) < minDatasetColumns {
		return EmptyEngine(), fmt.Errorf("%w: need at least %d columns, got %d",
			domain.ErrDatasetInvalid, minDatasetColumns, len(table.Columns))
	}

	roles, err := catalog.IdentifyColumns(table.Columns)
	if err != nil {
		return EmptyEngine(), err
	}

	cat, skipped, err := catalog.Normalize(table, roles)
	if err != nil {
		return EmptyEngine(), err
	}
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("rows without a name were dropped")
	}
	if cat.Len() == 0 {
		log.Warn().Msg("no usable rows, serving with an empty catalog")
		return EmptyEngine(), nil
	}

	index := vectorspace.Build(cat.SearchTexts())

	log.Info().
		Str("nameColumn", roles.Name).
		Str("compositionColumn", roles.Composition).
		Str("priceColumn", roles.Price).
		Int("entries", cat.Len()).
		Int("vocabulary", index.VocabularySize()).
		Msg("catalog index built")

	return &Engine{catalog: cat, index: index}, nil
}

// Empty reports whether the engine has no catalog to query
func (e *Engine) Empty() bool {
	return e == nil || e.catalog.Len() == 0 || e.index == nil
}

// Catalog returns the engine's catalog, nil when empty
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Index returns the engine's vector space, nil when empty
func (e *Engine) Index() *vectorspace.Index {
	return e.index
}

// Stats summarizes the loaded catalog
func (e *Engine) Stats() domain.CatalogStats {
	if e.Empty() {
		return domain.CatalogStats{}
	}
	return domain.CatalogStats{
		Entries:        e.catalog.Len(),
		DistinctNames:  len(e.catalog.Names()),
		VocabularySize: e.index.VocabularySize(),
		Columns:        e.catalog.Roles(),
		Loaded:         true,
	}
}
