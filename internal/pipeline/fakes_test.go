package pipeline

import (
	"context"
	"fmt"
	"sync"
)

// memBlobStore is an in-memory BlobStore for tests.
type memBlobStore struct {
	mu      sync.Mutex
	buckets map[string]bool
	objects map[string][]byte
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{
		buckets: make(map[string]bool),
		objects: make(map[string][]byte),
	}
}

func (s *memBlobStore) key(bucket, object string) string { return bucket + "/" + object }

func (s *memBlobStore) EnsureBucket(ctx context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets[bucket] = true
	return nil
}

func (s *memBlobStore) Put(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets[bucket] = true
	s.objects[s.key(bucket, object)] = data
	return nil
}

func (s *memBlobStore) Get(ctx context.Context, bucket, object string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[s.key(bucket, object)]
	if !ok {
		return nil, fmt.Errorf("object %s/%s not found", bucket, object)
	}
	return data, nil
}

func (s *memBlobStore) Exists(ctx context.Context, bucket, object string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[s.key(bucket, object)]
	return ok, nil
}

// memDocStore is an in-memory DocumentStore. reject simulates per-collection
// bulk-insert rejections.
type memDocStore struct {
	collections  map[string][]any
	indexEnsured int
	reject       map[string]int
}

func newMemDocStore() *memDocStore {
	return &memDocStore{
		collections: make(map[string][]any),
		reject:      make(map[string]int),
	}
}

func (m *memDocStore) Replace(ctx context.Context, collection string, docs []any) (int64, error) {
	keep := len(docs) - m.reject[collection]
	if keep < 0 {
		keep = 0
	}
	m.collections[collection] = docs[:keep]
	return int64(keep), nil
}

func (m *memDocStore) EnsureIndexes(ctx context.Context) error {
	m.indexEnsured++
	return nil
}

func (m *memDocStore) Count(ctx context.Context, collection string) (int64, error) {
	return int64(len(m.collections[collection])), nil
}
