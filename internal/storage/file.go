package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileStore keeps one file per key under a data directory. This is the
// default backend: a plain, durable, device-local medium. Writes go through
// a temporary file and a rename so a crash never leaves a half-written value.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	logger.Debug("file store ready", zap.String("dir", dir))
	return &FileStore{dir: dir, logger: logger}, nil
}

func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read key %q: %w", key, err)
	}
	return string(data), true, nil
}

func (s *FileStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := s.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o600); err != nil {
		return fmt.Errorf("write key %q: %w", key, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write key %q: %w", key, err)
	}
	return nil
}

func (s *FileStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove key %q: %w", key, err)
	}
	return nil
}

// path maps a storage key onto a file name. Keys contain characters that are
// not filesystem-safe ("@ticket-check/users"), so they are percent-encoded.
func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, url.QueryEscape(key))
}
