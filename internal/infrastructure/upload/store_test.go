package upload

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/medalt/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, maxBytes int64) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "uploads"), []string{"png", ".JPG", "jpeg"}, maxBytes)
	require.NoError(t, err)
	return store
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.png", "photo.png"},
		{"my photo.png", "my_photo.png"},
		{"../../etc/passwd", "etcpasswd"},
		{"..hidden.jpg", "hidden.jpg"},
		{"résumé scan.jpeg", "rsum_scan.jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestLocalStore_Allowed(t *testing.T) {
	store := newStore(t, 0)

	assert.True(t, store.Allowed("a.png"))
	assert.True(t, store.Allowed("a.JpG"))
	assert.False(t, store.Allowed("a.gif"))
	assert.False(t, store.Allowed("png"))
}

func TestLocalStore_SaveAndPath(t *testing.T) {
	store := newStore(t, 0)
	ctx := context.Background()

	name, err := store.Save(ctx, "strip photo.png", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, "_strip_photo.png"), name)

	path, err := store.Path(name)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))

	t.Run("names are unique", func(t *testing.T) {
		other, err := store.Save(ctx, "strip photo.png", strings.NewReader("x"))
		require.NoError(t, err)
		assert.NotEqual(t, name, other)
	})
}

func TestLocalStore_SaveRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("disallowed extension", func(t *testing.T) {
		store := newStore(t, 0)
		_, err := store.Save(ctx, "script.exe", strings.NewReader("x"))
		assert.ErrorIs(t, err, domain.ErrFileTypeNotAllowed)
	})

	t.Run("too large", func(t *testing.T) {
		store := newStore(t, 4)
		_, err := store.Save(ctx, "big.png", strings.NewReader("12345"))
		assert.ErrorIs(t, err, domain.ErrFileTooLarge)

		entries, err := os.ReadDir(store.dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("exactly at limit", func(t *testing.T) {
		store := newStore(t, 4)
		_, err := store.Save(ctx, "ok.png", strings.NewReader("1234"))
		assert.NoError(t, err)
	})
}

func TestLocalStore_Path(t *testing.T) {
	store := newStore(t, 0)

	for _, name := range []string{"", ".", "..", "../secret.png", "sub/file.png", "missing.png"} {
		t.Run(name, func(t *testing.T) {
			_, err := store.Path(name)
			assert.True(t, IsNotFound(err), "err = %v", err)
		})
	}
}
