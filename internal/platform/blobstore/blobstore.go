// Package blobstore provides object storage for partner-uploaded images.
// It defines the Store interface, an in-memory implementation suitable for
// testing and development, and an S3-backed implementation for production.
package blobstore

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"context"
)

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrObjectTooLarge = errors.New("object exceeds maximum allowed size")
	ErrEmptyKey       = errors.New("object key is required")
)

// MaxObjectSize is the per-object ceiling in bytes (5 MiB). Uploads larger
// than this are rejected before any remote call is made.
const MaxObjectSize = 5 * 1024 * 1024

// Store is the contract for object storage backends. Put stores the object
// under key and returns the durable public URL; Delete removes the object.
// KeyForURL maps one of this store's public URLs back to its key, reporting
// false for URLs the store did not mint.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
	KeyForURL(url string) (string, bool)
}

// ---------------------------------------------------------------------------
// In-memory implementation
// ---------------------------------------------------------------------------

type memoryObject struct {
	contentType string
	data        []byte
}

// MemoryStore is a thread-safe, in-memory Store for testing and development.
type MemoryStore struct {
	baseURL string
	mu      sync.RWMutex
	objects map[string]memoryObject
}

// NewMemoryStore returns a ready-to-use MemoryStore. baseURL is prepended to
// keys to form the public URL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string]memoryObject),
	}
}

func (s *MemoryStore) Put(_ context.Context, key, contentType string, data []byte) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	if len(data) > MaxObjectSize {
		return "", ErrObjectTooLarge
	}

	s.mu.Lock()
	s.objects[key] = memoryObject{contentType: contentType, data: append([]byte(nil), data...)}
	s.mu.Unlock()

	return s.baseURL + "/" + key, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return ErrObjectNotFound
	}
	delete(s.objects, key)
	return nil
}

func (s *MemoryStore) KeyForURL(url string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

// Get returns a stored object's data, for assertions in tests.
func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return obj.data, nil
}

// Len returns the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// ---------------------------------------------------------------------------
// Failing store for tests
// ---------------------------------------------------------------------------

// FailingStore wraps a Store and fails selected operations, for exercising
// the best-effort deletion and abort-on-upload-failure paths.
type FailingStore struct {
	Store
	FailPut    bool
	FailDelete bool
}

func (s *FailingStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if s.FailPut {
		return "", fmt.Errorf("put %s: storage unavailable", key)
	}
	return s.Store.Put(ctx, key, contentType, data)
}

func (s *FailingStore) Delete(ctx context.Context, key string) error {
	if s.FailDelete {
		return fmt.Errorf("delete %s: storage unavailable", key)
	}
	return s.Store.Delete(ctx, key)
}
