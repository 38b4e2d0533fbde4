package blob

import (
	"context"
	"fmt"
	"sync"
)

// Object is a stored blob with its content type.
type Object struct {
	Data        []byte
	ContentType string
}

// InMemoryStore implements BlobStore using an in-memory map.
type InMemoryStore struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]Object
}

// NewInMemoryStore creates an empty store whose locators use bucket as host prefix.
func NewInMemoryStore(bucket string) *InMemoryStore {
	return &InMemoryStore{
		bucket:  bucket,
		objects: make(map[string]Object),
	}
}

// Put stores a copy of data under key.
func (s *InMemoryStore) Put(_ context.Context, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	return fmt.Sprintf("https://%s.memory.local/%s", s.bucket, key), nil
}

// Delete removes the object under key.
func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, key)
	return nil
}

// Has reports whether an object exists under key.
func (s *InMemoryStore) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.objects[key]
	return ok
}

// Object returns the object stored under key.
func (s *InMemoryStore) Object(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.objects[key]
	return o, ok
}

// Len returns the number of stored objects.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.objects)
}
