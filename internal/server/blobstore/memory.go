package blobstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/securedrive/internal/common"
)

type memBlob struct {
	data     []byte
	modified time.Time
}

type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]memBlob
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]memBlob), now: time.Now}
}

func (s *MemoryStore) Put(ctx context.Context, name string, data []byte) error {
	if err := validName(name); err != nil {
		return err
	}
	s.mu.Lock()
	s.blobs[name] = memBlob{data: append([]byte(nil), data...), modified: s.now()}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	b, ok := s.blobs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, common.ErrorNotFound
	}
	return append([]byte(nil), b.data...), nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	delete(s.blobs, name)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	out := make([]Info, 0, len(s.blobs))
	for name, b := range s.blobs {
		out = append(out, Info{Name: name, Size: int64(len(b.data)), ModifiedAt: b.modified})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
