package assets

import (
	"context"
	"io"
)

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, a *Asset) error
	Get(ctx context.Context, tenant string, id AssetID) (*Asset, error)
	Latest(ctx context.Context, tenant string, limit int) ([]*Asset, error)
}

// FileStore port (interface untuk penyimpanan file upload)
type FileStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}
