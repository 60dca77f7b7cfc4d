package artifacts

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/securedrive/internal/common"
	"github.com/dmitrijs2005/securedrive/internal/server/keylock"
	"github.com/dmitrijs2005/securedrive/internal/server/models"
)

// MemoryRepository is a keyed in-process store. mu guards the map itself;
// locks serializes read-check-write sequences per storage name.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*models.Artifact
	locks *keylock.Locker
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[string]*models.Artifact),
		locks: keylock.New(),
	}
}

func (r *MemoryRepository) Put(ctx context.Context, a *models.Artifact) error {
	unlock := r.locks.Lock(a.StorageName)
	defer unlock()

	if existing := r.load(a.StorageName); existing != nil && existing.Owner != a.Owner {
		return common.ErrorForbidden
	}

	r.mu.Lock()
	r.items[a.StorageName] = a.Clone()
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, storageName string) (*models.Artifact, error) {
	a := r.load(storageName)
	if a == nil {
		return nil, common.ErrorNotFound
	}
	return a.Clone(), nil
}

func (r *MemoryRepository) ListByOwner(ctx context.Context, owner string) ([]*models.Artifact, error) {
	r.mu.RLock()
	result := make([]*models.Artifact, 0)
	for _, a := range r.items {
		if a.Owner == owner {
			result = append(result, a.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].UploadedAt.Equal(result[j].UploadedAt) {
			return result[i].StorageName < result[j].StorageName
		}
		return result[i].UploadedAt.Before(result[j].UploadedAt)
	})
	return result, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, storageName, owner string) error {
	unlock := r.locks.Lock(storageName)
	defer unlock()

	existing := r.load(storageName)
	if existing == nil {
		return common.ErrorNotFound
	}
	if existing.Owner != owner {
		return common.ErrorForbidden
	}

	r.mu.Lock()
	delete(r.items, storageName)
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Exists(ctx context.Context, storageName string) (bool, error) {
	return r.load(storageName) != nil, nil
}

func (r *MemoryRepository) load(storageName string) *models.Artifact {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.items[storageName]
}
