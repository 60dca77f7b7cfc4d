package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securedrive/internal/logging"
	"github.com/dmitrijs2005/securedrive/internal/server/blobstore"
	"github.com/dmitrijs2005/securedrive/internal/server/keylock"
	"github.com/dmitrijs2005/securedrive/internal/server/repositories/artifacts"
)

// OrphanCollector removes blobs that have no metadata record. Blobs younger
// than grace are left alone, since their upload may still be in flight.
// Only names NewStorageName could have produced are ever considered.
type OrphanCollector struct {
	artifacts artifacts.Repository
	blobs     blobstore.Store
	locks     *keylock.Locker
	grace     time.Duration
	log       logging.Logger
	now       func() time.Time
}

// NewOrphanCollector returns a collector that shares locks with the
// ArtifactService writing to the same stores.
func NewOrphanCollector(repo artifacts.Repository, blobs blobstore.Store, locks *keylock.Locker, grace time.Duration, log logging.Logger) *OrphanCollector {
	return &OrphanCollector{
		artifacts: repo,
		blobs:     blobs,
		locks:     locks,
		grace:     grace,
		log:       log,
		now:       time.Now,
	}
}

// Sweep runs one pass and returns the number of blobs removed. Per-blob
// failures are logged and skipped.
func (c *OrphanCollector) Sweep(ctx context.Context) (int, error) {
	infos, err := c.blobs.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("error listing blobs: %w", err)
	}

	cutoff := c.now().Add(-c.grace)
	removed := 0

	for _, info := range infos {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if !ValidStorageName(info.Name) {
			c.log.Debug(ctx, "skipping foreign blob", "name", info.Name)
			continue
		}
		if info.ModifiedAt.After(cutoff) {
			continue
		}

		ok, err := c.collect(ctx, info.Name)
		if err != nil {
			c.log.Warn(ctx, "orphan check failed", "storage_name", info.Name, "error", err)
			continue
		}
		if ok {
			removed++
		}
	}

	if removed > 0 {
		c.log.Info(ctx, "orphan blobs removed", "count", removed)
	}
	return removed, nil
}

func (c *OrphanCollector) collect(ctx context.Context, name string) (bool, error) {
	unlock := c.locks.Lock(name)
	defer unlock()

	exists, err := c.artifacts.Exists(ctx, name)
	if err != nil || exists {
		return false, err
	}
	if err := c.blobs.Delete(ctx, name); err != nil {
		return false, err
	}
	return true, nil
}

// Run sweeps every interval until ctx is done.
func (c *OrphanCollector) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.Sweep(ctx); err != nil && ctx.Err() == nil {
				c.log.Error(ctx, "orphan sweep failed", "error", err)
			}
		}
	}
}
