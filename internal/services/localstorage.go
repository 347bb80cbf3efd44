package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"assetvault/internal/utils/logger"
)

var _ Storage = (*LocalStorage)(nil)

// LocalStorage keeps uploads on the local filesystem. Used in development
// when no S3 bucket is configured.
type LocalStorage struct {
	basePath string
	logger   *logger.Logger
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{
		basePath: basePath,
		logger:   logger.New("local_storage"),
	}, nil
}

func (s *LocalStorage) Upload(ctx context.Context, content []byte, filename, contentType string) (string, error) {
	key := fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(filename))

	if err := os.WriteFile(filepath.Join(s.basePath, key), content, 0o644); err != nil {
		return "", s.logger.Error("Failed to write file", err)
	}

	return key, nil
}

func (s *LocalStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	// The key is always a generated uuid, never client input, but keep the
	// path inside the base directory anyway.
	path := filepath.Join(s.basePath, filepath.Base(key))
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// GetSignedURL is unsupported for local files; callers fall back to the
// proxied download endpoint.
func (s *LocalStorage) GetSignedURL(ctx context.Context, key string, duration time.Duration) (string, error) {
	return "", nil
}
