// Package blob is the object-storage port for published card images.
package blob

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Store uploads binary objects and issues public URLs for them. Uploaded
// objects are never deleted by this application; lifecycle is a deployment
// concern.
type Store interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	PublicURL(path string) string
}

// MemoryStore keeps objects in memory. Used in tests and in local dev when no
// object store is configured; the router serves its objects under /static so
// the public URLs it issues actually resolve.
type MemoryStore struct {
	baseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "http://localhost:8080/static"
	}
	return &MemoryStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string]memoryObject),
	}
}

func (s *MemoryStore) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	if path == "" {
		return fmt.Errorf("blob: object path is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[path] = memoryObject{data: buf, contentType: contentType}
	return nil
}

func (s *MemoryStore) PublicURL(path string) string {
	return s.baseURL + "/" + strings.TrimPrefix(path, "/")
}

// Get returns a stored object's bytes; test helper.
func (s *MemoryStore) Get(path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[path]
	return obj.data, ok
}

// Object returns a stored object with its content type for serving.
func (s *MemoryStore) Object(path string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[path]
	if !ok {
		return nil, "", false
	}

	contentType := obj.contentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return obj.data, contentType, true
}
