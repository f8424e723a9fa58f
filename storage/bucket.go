// Package storage writes generated icon files to object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/esimov/iconvault/utils"
)

// ErrInvalidKey is returned for empty or absolute object keys.
var ErrInvalidKey = errors.New("storage: invalid object key")

// Bucket is a write-only view of an object store. Put overwrites any
// existing object stored under the same key.
type Bucket interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// PutFile uploads the local file at path under key, detecting its content type.
func PutFile(ctx context.Context, b Bucket, key, path string) (int64, error) {
	if err := ValidateKey(key); err != nil {
		return 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("storage: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("storage: %w", err)
	}
	ctype, err := utils.DetectContentType(path)
	if err != nil {
		return 0, fmt.Errorf("storage: detect content type of %s: %w", path, err)
	}
	if err := b.Put(ctx, key, f, fi.Size(), ctype); err != nil {
		return 0, fmt.Errorf("storage: put %s: %w", key, err)
	}
	return fi.Size(), nil
}

// ValidateKey checks that key is a relative, slash separated object key.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}
