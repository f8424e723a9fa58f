package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalBucket mirrors objects into a directory on the local filesystem.
type LocalBucket struct {
	BaseDir string
}

// NewLocalBucket creates a new LocalBucket rooted at baseDir.
func NewLocalBucket(baseDir string) *LocalBucket {
	return &LocalBucket{BaseDir: baseDir}
}

// Put writes the payload to <base>/<key>, creating parent directories.
func (s *LocalBucket) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	path := s.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return file.Close()
}

// Path returns the local path backing key.
func (s *LocalBucket) Path(key string) string {
	return filepath.Join(s.BaseDir, filepath.FromSlash(key))
}
