// Package repomanager builds the repositories for the configured metadata
// backend and owns their lifecycle (migrations, connection close).
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/securedrive/internal/server/repositories/artifacts"
	"github.com/dmitrijs2005/securedrive/internal/server/repositories/identities"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Identities() identities.Repository
	Artifacts() artifacts.Repository
	Close() error
}
