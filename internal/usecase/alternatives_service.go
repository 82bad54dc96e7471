package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/medalt/backend/internal/domain"
	"github.com/medalt/backend/internal/logging"
	"github.com/medalt/backend/internal/resolver"
)

// Defaults applied when AlternativesServiceConfig leaves a field zero
const (
	DefaultTopN     = 5
	DefaultMaxTopN  = 50
	DefaultCacheTTL = time.Hour
)

// AlternativesServiceConfig holds configuration for the alternatives service
type AlternativesServiceConfig struct {
	CacheTTL           time.Duration
	DefaultTopN        int
	MaxTopN            int
	EnableDebugLogging bool
}

// NameResolver picks the canonical catalog name closest to a query
type NameResolver interface {
	Resolve(query string, candidates []string) (string, bool)
}

// AlternativesService resolves a medicine name and ranks substitutes by composition
type AlternativesService struct {
	engine       *Engine
	resolver     NameResolver
	cache        domain.CacheRepository
	preprocessor *QueryPreprocessor
	cacheTTL     time.Duration
	defaultTopN  int
	maxTopN      int
	debug        bool
}

// NewAlternativesService creates a new alternatives service.
// A nil cache disables result caching.
func NewAlternativesService(
	engine *Engine,
	res NameResolver,
	cache domain.CacheRepository,
	config AlternativesServiceConfig,
) *AlternativesService {
	if engine == nil {
		engine = EmptyEngine()
	}
	if res == nil {
		res = resolver.New(resolver.Config{})
	}

	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}

	defaultTopN := config.DefaultTopN
	if defaultTopN <= 0 {
		defaultTopN = DefaultTopN
	}

	maxTopN := config.MaxTopN
	if maxTopN <= 0 {
		maxTopN = DefaultMaxTopN
	}
	if defaultTopN > maxTopN {
		defaultTopN = maxTopN
	}

	return &AlternativesService{
		engine:       engine,
		resolver:     res,
		cache:        cache,
		preprocessor: NewQueryPreprocessor(config.EnableDebugLogging),
		cacheTTL:     cacheTTL,
		defaultTopN:  defaultTopN,
		maxTopN:      maxTopN,
		debug:        config.EnableDebugLogging,
	}
}

// FindAlternatives resolves medicineName to a catalog entry and returns its closest
// substitutes by composition.
//
// Errors: domain.ErrInvalidRequest for a blank name, domain.ErrDatasetEmpty when no
// catalog is loaded, domain.ErrNoMatch when nothing clears the similarity cutoff and
// domain.ErrCatalogInconsistent if the resolved name cannot be located.
func (s *AlternativesService) FindAlternatives(
	ctx context.Context,
	medicineName string,
	topN int,
) (*domain.AlternativesResult, error) {
	query := s.preprocessor.PreprocessQuery(medicineName)
	if query == "" {
		return nil, domain.ErrInvalidRequest
	}

	if s.engine.Empty() {
		return nil, domain.ErrDatasetEmpty
	}

	topN = s.effectiveTopN(topN)
	cacheKey := generateCacheKey(query, topN)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		return cached, nil
	}

	resolved, err := s.Resolve(query)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	alternatives := Rank(s.engine.Catalog(), s.engine.Index(), resolved.TargetIndex, topN)

	if s.debug {
		log := logging.Component("alternatives")
		log.Debug().
			Str("query", query).
			Str("match", resolved.TargetBrand).
			Int("targetIndex", resolved.TargetIndex).
			Int("results", len(alternatives)).
			Msg("alternatives ranked")
	}

	result := &domain.AlternativesResult{
		Match:        resolved.TargetBrand,
		Alternatives: alternatives,
	}

	if err := s.setInCache(ctx, cacheKey, result); err != nil {
		log := logging.Component("alternatives")
		log.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache alternatives")
	}

	return result, nil
}

// Resolve maps a cleaned query to its canonical catalog name and position
func (s *AlternativesService) Resolve(query string) (*domain.ResolvedQuery, error) {
	cat := s.engine.Catalog()

	name, ok := s.resolver.Resolve(query, cat.Names())
	if !ok {
		return nil, domain.ErrNoMatch
	}

	idx := cat.IndexOf(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrCatalogInconsistent, name)
	}

	return &domain.ResolvedQuery{TargetBrand: name, TargetIndex: idx}, nil
}

// Stats summarizes the loaded catalog
func (s *AlternativesService) Stats() domain.CatalogStats {
	return s.engine.Stats()
}

// effectiveTopN applies the default for unset values and the configured ceiling
func (s *AlternativesService) effectiveTopN(topN int) int {
	if topN <= 0 {
		return s.defaultTopN
	}
	if topN > s.maxTopN {
		return s.maxTopN
	}
	return topN
}

// generateCacheKey creates a cache key from the cleaned query and result size.
// Format: "alternatives:{topN}:{query}"
func generateCacheKey(query string, topN int) string {
	return fmt.Sprintf("alternatives:%d:%s", topN, query)
}

// getFromCache retrieves a cached result
func (s *AlternativesService) getFromCache(ctx context.Context, key string) (*domain.AlternativesResult, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if result, ok := value.(*domain.AlternativesResult); ok {
		return result, nil
	}

	// JSON-backed caches hand back generic maps
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, domain.ErrCacheMiss
	}
	var result domain.AlternativesResult
	if err := json.Unmarshal(raw, &result); err != nil || result.Match == "" {
		return nil, domain.ErrCacheMiss
	}
	if result.Alternatives == nil {
		result.Alternatives = []domain.MatchResult{}
	}
	return &result, nil
}

// setInCache stores a result in the cache
func (s *AlternativesService) setInCache(ctx context.Context, key string, result *domain.AlternativesResult) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, key, result, s.cacheTTL)
}
