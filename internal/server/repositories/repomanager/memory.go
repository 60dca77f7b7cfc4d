package repomanager

import (
	"context"

	"github.com/dmitrijs2005/securedrive/internal/server/repositories/artifacts"
	"github.com/dmitrijs2005/securedrive/internal/server/repositories/identities"
)

// MemoryRepositoryManager keeps all metadata in process memory. Everything
// is lost on restart, which suits development and tests.
type MemoryRepositoryManager struct {
	identities *identities.MemoryRepository
	artifacts  *artifacts.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		identities: identities.NewMemoryRepository(),
		artifacts:  artifacts.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(ctx context.Context) error { return nil }

func (m *MemoryRepositoryManager) Identities() identities.Repository { return m.identities }

func (m *MemoryRepositoryManager) Artifacts() artifacts.Repository { return m.artifacts }

func (m *MemoryRepositoryManager) Close() error { return nil }
