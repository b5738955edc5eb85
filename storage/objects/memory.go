package objstore

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core"
)

type memObject struct {
	data []byte
	info core.ObjectInfo
}

// MemoryStore keeps objects in process memory. It backs tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memObject // {bucket/key: object}
}

var _ core.ObjectStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memObject)}
}

func (s *MemoryStore) Put(_ context.Context, bucket, key string, r io.Reader, _ int64, contentType string) (core.ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.ObjectInfo{}, errors.Wrap(err, "reading object")
	}
	info := core.ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Size:        int64(len(data)),
		ContentType: contentType,
		UpdatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.objects[bucket+"/"+key] = memObject{data: data, info: info}
	s.mu.Unlock()
	return info, nil
}

func (s *MemoryStore) Get(_ context.Context, bucket, key string) (io.ReadCloser, core.ObjectInfo, error) {
	s.mu.RLock()
	obj, ok := s.objects[bucket+"/"+key]
	s.mu.RUnlock()

	if !ok {
		return nil, core.ObjectInfo{}, core.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.info, nil
}

func (s *MemoryStore) Delete(_ context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[bucket+"/"+key]; !ok {
		return core.ErrObjectNotFound
	}
	delete(s.objects, bucket+"/"+key)
	return nil
}
