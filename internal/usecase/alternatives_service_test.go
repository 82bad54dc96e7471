package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medalt/backend/internal/domain"
	"github.com/medalt/backend/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	data      map[string]interface{}
	getError  error
	setError  error
	getCalled bool
	setCalled bool
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string]interface{}),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	m.getCalled = true
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.setCalled = true
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

func medicineTable() *domain.Table {
	return &domain.Table{
		Columns: []string{"Brand Name", "Composition", "Price"},
		Rows: []domain.Row{
			{"Brand Name": "Panadol", "Composition": "Paracetamol", "Price": "35"},
			{"Brand Name": "Calpol", "Composition": "Paracetamol", "Price": "40"},
			{"Brand Name": "Augmentin", "Composition": "Amoxicillin", "Price": nil},
		},
	}
}

func newTestService(t *testing.T, cache domain.CacheRepository) *AlternativesService {
	t.Helper()
	engine, err := BuildEngine(medicineTable())
	require.NoError(t, err)
	return NewAlternativesService(engine, resolver.New(resolver.Config{FoldCase: true}), cache, AlternativesServiceConfig{})
}

func TestNewAlternativesService(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		svc := NewAlternativesService(nil, nil, nil, AlternativesServiceConfig{})
		assert.Equal(t, DefaultTopN, svc.defaultTopN)
		assert.Equal(t, DefaultMaxTopN, svc.maxTopN)
		assert.Equal(t, DefaultCacheTTL, svc.cacheTTL)
		assert.NotNil(t, svc.engine)
		assert.NotNil(t, svc.resolver)
	})

	t.Run("default top n never exceeds max", func(t *testing.T) {
		svc := NewAlternativesService(nil, nil, nil, AlternativesServiceConfig{DefaultTopN: 20, MaxTopN: 10})
		assert.Equal(t, 10, svc.defaultTopN)
	})
}

func TestFindAlternatives(t *testing.T) {
	ctx := context.Background()

	t.Run("returns substitute with same composition", func(t *testing.T) {
		svc := newTestService(t, nil)

		result, err := svc.FindAlternatives(ctx, "Panadol", 1)
		require.NoError(t, err)
		assert.Equal(t, "Panadol", result.Match)
		require.Len(t, result.Alternatives, 1)
		assert.Equal(t, "Calpol", result.Alternatives[0].BrandName)
		assert.Equal(t, "40", result.Alternatives[0].Price)
		assert.Equal(t, 100.0, result.Alternatives[0].MatchScore)
	})

	t.Run("default top n returns all other entries", func(t *testing.T) {
		svc := newTestService(t, nil)

		result, err := svc.FindAlternatives(ctx, "panadol", 0)
		require.NoError(t, err)
		require.Len(t, result.Alternatives, 2)
		assert.Equal(t, "Calpol", result.Alternatives[0].BrandName)
		assert.Equal(t, "Augmentin", result.Alternatives[1].BrandName)
		assert.Equal(t, "N/A", result.Alternatives[1].Price)
		assert.Equal(t, 0.0, result.Alternatives[1].MatchScore)
	})

	t.Run("resolves misspelled names", func(t *testing.T) {
		svc := newTestService(t, nil)

		result, err := svc.FindAlternatives(ctx, "  Augmentn ", 5)
		require.NoError(t, err)
		assert.Equal(t, "Augmentin", result.Match)
		assert.Len(t, result.Alternatives, 2)
	})

	t.Run("empty name is invalid input", func(t *testing.T) {
		svc := newTestService(t, nil)

		for _, name := range []string{"", "   ", "\t\n"} {
			_, err := svc.FindAlternatives(ctx, name, 5)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Errorf("FindAlternatives(%q) error = %v, want ErrInvalidRequest", name, err)
			}
		}
	})

	t.Run("unknown name is no match", func(t *testing.T) {
		svc := newTestService(t, nil)

		_, err := svc.FindAlternatives(ctx, "Zyrtec", 5)
		if !errors.Is(err, domain.ErrNoMatch) {
			t.Errorf("error = %v, want ErrNoMatch", err)
		}
	})

	t.Run("empty catalog reports empty dataset for any input", func(t *testing.T) {
		svc := NewAlternativesService(EmptyEngine(), nil, nil, AlternativesServiceConfig{})

		for _, name := range []string{"Panadol", "anything"} {
			_, err := svc.FindAlternatives(ctx, name, 5)
			if !errors.Is(err, domain.ErrDatasetEmpty) {
				t.Errorf("FindAlternatives(%q) error = %v, want ErrDatasetEmpty", name, err)
			}
		}
	})

	t.Run("cancelled context aborts before ranking", func(t *testing.T) {
		svc := newTestService(t, nil)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := svc.FindAlternatives(cctx, "Panadol", 5)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFindAlternatives_Cache(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and reuses results", func(t *testing.T) {
		cache := NewMockCacheRepository()
		svc := newTestService(t, cache)

		first, err := svc.FindAlternatives(ctx, "Panadol", 1)
		require.NoError(t, err)
		assert.True(t, cache.setCalled)

		_, ok := cache.data[generateCacheKey("Panadol", 1)]
		assert.True(t, ok)

		second, err := svc.FindAlternatives(ctx, "Panadol", 1)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("decodes map values from JSON caches", func(t *testing.T) {
		cache := NewMockCacheRepository()
		cache.data[generateCacheKey("Panadol", 1)] = map[string]interface{}{
			"match": "Panadol",
			"alternatives": []interface{}{
				map[string]interface{}{"brand_name": "Cached", "formula": "x", "price": "1", "match_score": 50.0},
			},
		}
		svc := newTestService(t, cache)

		result, err := svc.FindAlternatives(ctx, "Panadol", 1)
		require.NoError(t, err)
		require.Len(t, result.Alternatives, 1)
		assert.Equal(t, "Cached", result.Alternatives[0].BrandName)
	})

	t.Run("cache failures do not fail the request", func(t *testing.T) {
		cache := NewMockCacheRepository()
		cache.getError = errors.New("boom")
		cache.setError = errors.New("boom")
		svc := newTestService(t, cache)

		result, err := svc.FindAlternatives(ctx, "Calpol", 1)
		require.NoError(t, err)
		assert.Equal(t, "Calpol", result.Match)
		assert.Equal(t, "Panadol", result.Alternatives[0].BrandName)
	})

	t.Run("top n is part of the key", func(t *testing.T) {
		assert.NotEqual(t, generateCacheKey("Panadol", 1), generateCacheKey("Panadol", 2))
	})
}

// ghostResolver resolves every query to a name the catalog does not contain
type ghostResolver struct{}

func (ghostResolver) Resolve(string, []string) (string, bool) { return "Ghost", true }

func TestResolve(t *testing.T) {
	engine, err := BuildEngine(medicineTable())
	require.NoError(t, err)

	t.Run("returns canonical name and first position", func(t *testing.T) {
		svc := NewAlternativesService(engine, nil, nil, AlternativesServiceConfig{})

		resolved, err := svc.Resolve("Calpol")
		require.NoError(t, err)
		assert.Equal(t, "Calpol", resolved.TargetBrand)
		assert.Equal(t, 1, resolved.TargetIndex)
	})

	t.Run("resolved name missing from catalog is an internal fault", func(t *testing.T) {
		svc := NewAlternativesService(engine, ghostResolver{}, nil, AlternativesServiceConfig{})

		_, err := svc.Resolve("Panadol")
		assert.ErrorIs(t, err, domain.ErrCatalogInconsistent)

		_, err = svc.FindAlternatives(context.Background(), "Panadol", 3)
		assert.ErrorIs(t, err, domain.ErrCatalogInconsistent)
	})
}

func TestFindAlternatives_NameWithInnerWhitespace(t *testing.T) {
	engine, err := BuildEngine(&domain.Table{
		Columns: []string{"Brand Name", "Composition"},
		Rows: []domain.Row{
			{"Brand Name": "Panadol Extrax", "Composition": "Paracetamol"},
			{"Brand Name": "Panadol  Extra", "Composition": "Paracetamol Caffeine"},
		},
	})
	require.NoError(t, err)
	svc := NewAlternativesService(engine, resolver.New(resolver.Config{}), nil, AlternativesServiceConfig{})

	result, err := svc.FindAlternatives(context.Background(), "Panadol  Extra", 1)
	require.NoError(t, err)
	assert.Equal(t, "Panadol Extra", result.Match)
	require.Len(t, result.Alternatives, 1)
	assert.Equal(t, "Panadol Extrax", result.Alternatives[0].BrandName)
}

func TestEffectiveTopN(t *testing.T) {
	svc := NewAlternativesService(nil, nil, nil, AlternativesServiceConfig{DefaultTopN: 5, MaxTopN: 10})

	assert.Equal(t, 5, svc.effectiveTopN(0))
	assert.Equal(t, 5, svc.effectiveTopN(-3))
	assert.Equal(t, 7, svc.effectiveTopN(7))
	assert.Equal(t, 10, svc.effectiveTopN(11))
}
