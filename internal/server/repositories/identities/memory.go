package identities

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/securedrive/internal/common"
	"github.com/dmitrijs2005/securedrive/internal/server/models"
)

// MemoryRepository keeps identities in process memory. It backs the
// "memory" metadata backend and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	byEmail map[string]models.Identity
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byEmail: make(map[string]models.Identity), now: time.Now}
}

func (r *MemoryRepository) Create(ctx context.Context, identity *models.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[identity.Email]; exists {
		return common.ErrorConflict
	}

	identity.CreatedAt = r.now().UTC()
	r.byEmail[identity.Email] = copyIdentity(*identity)
	return nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identity, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := copyIdentity(identity)
	return &c, nil
}

func copyIdentity(i models.Identity) models.Identity {
	i.WrappedMasterKey = append([]byte(nil), i.WrappedMasterKey...)
	i.MasterKeyWrapNonce = append([]byte(nil), i.MasterKeyWrapNonce...)
	i.KDFSalt = append([]byte(nil), i.KDFSalt...)
	i.AuthVerifier = append([]byte(nil), i.AuthVerifier...)
	return i
}
