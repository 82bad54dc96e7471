package domain

import (
	"context"
	"io"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// DatasetLoader supplies the catalog's raw tabular data
type DatasetLoader interface {
	Load(ctx context.Context, source string) (*Table, error)
}

// AttachmentStore persists uploaded files. The matching engine never reads from it.
type AttachmentStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Path(filename string) (string, error)
}
