package services

import (
	"context"
	"io"
	"time"
)

// Storage persists uploaded binaries. Implementations generate their own
// storage key (random id plus the original extension) so colliding
// original filenames can never overwrite each other; the catalog row keeps
// the returned key.
type Storage interface {
	Upload(ctx context.Context, content []byte, filename, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	GetSignedURL(ctx context.Context, key string, duration time.Duration) (string, error)
}
