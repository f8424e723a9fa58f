package storage

import (
	"context"
	"io"
	"sort"
	"sync"
)

// Object is a stored payload together with its content type.
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryBucket keeps uploaded objects in process memory.
// It backs dry runs and tests.
type MemoryBucket struct {
	mu      sync.Mutex
	objects map[string]Object
}

// NewMemoryBucket returns an empty in-memory bucket.
func NewMemoryBucket() *MemoryBucket {
	return &MemoryBucket{objects: make(map[string]Object)}
}

// Put stores the payload read from r.
func (m *MemoryBucket) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{Data: data, ContentType: contentType}
	return nil
}

// Get returns the stored object for assertions.
func (m *MemoryBucket) Get(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	obj.Data = append([]byte(nil), obj.Data...)
	return obj, ok
}

// Keys returns the sorted list of stored keys.
func (m *MemoryBucket) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
