package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/medalt/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *MemoryCache {
	t.Helper()
	cache := NewMemoryCache()
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	t.Run("store and retrieve string", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "k1", "value", time.Minute))

		got, err := cache.Get(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, "value", got)
	})

	t.Run("structs come back as JSON maps", func(t *testing.T) {
		result := &domain.AlternativesResult{
			Match: "Panadol",
			Alternatives: []domain.MatchResult{
				{BrandName: "Calpol", Formula: "Paracetamol", Price: "40", MatchScore: 100},
			},
		}
		require.NoError(t, cache.Set(ctx, "alternatives:1:Panadol", result, time.Minute))

		got, err := cache.Get(ctx, "alternatives:1:Panadol")
		require.NoError(t, err)

		m, ok := got.(map[string]interface{})
		require.True(t, ok, "got %T", got)
		assert.Equal(t, "Panadol", m["match"])

		alts, ok := m["alternatives"].([]interface{})
		require.True(t, ok)
		require.Len(t, alts, 1)
		assert.Equal(t, "Calpol", alts[0].(map[string]interface{})["brand_name"])
	})

	t.Run("unencodable values are rejected", func(t *testing.T) {
		err := cache.Set(ctx, "bad", make(chan int), time.Minute)
		assert.Error(t, err)
		_, err = cache.Get(ctx, "bad")
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set(ctx, "short", "v", time.Second))
	require.NoError(t, cache.Set(ctx, "long", "v", time.Hour))

	now = now.Add(2 * time.Second)

	_, err := cache.Get(ctx, "short")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	exists, err := cache.Exists(ctx, "short")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = cache.Exists(ctx, "long")
	require.NoError(t, err)
	assert.True(t, exists)

	t.Run("sweep removes only expired entries", func(t *testing.T) {
		assert.Equal(t, 2, cache.Size())
		cache.removeExpired()
		assert.Equal(t, 1, cache.Size())
	})
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := newTestCache(t)

	_, err := cache.Get(context.Background(), "non-existent-key")
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	key := "delete-test"
	require.NoError(t, cache.Set(ctx, key, "value", time.Minute))

	_, err := cache.Get(ctx, key)
	require.NoError(t, err)

	require.NoError(t, cache.Delete(ctx, key))

	_, err = cache.Get(ctx, key)
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() after delete error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_SizeAndClear(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 for empty cache", size)
	}

	for i := 0; i < 5; i++ {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("k%d", i), i, time.Minute))
	}
	assert.Equal(t, 5, cache.Size())

	require.NoError(t, cache.Delete(ctx, "k0"))
	assert.Equal(t, 4, cache.Size())

	cache.Clear()
	assert.Equal(t, 0, cache.Size())
	for i := 0; i < 5; i++ {
		_, err := cache.Get(ctx, fmt.Sprintf("k%d", i))
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Close(t *testing.T) {
	cache := NewMemoryCacheWithInterval(time.Millisecond)
	assert.NoError(t, cache.Close())
	assert.NoError(t, cache.Close())
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", id)
			if err := cache.Set(ctx, key, id, time.Minute); err != nil {
				t.Errorf("Concurrent Set() error = %v", err)
			}
			if _, err := cache.Get(ctx, key); err != nil {
				t.Errorf("Concurrent Get() error = %v", err)
			}
		}(i)
	}
	wg.Wait()
}
