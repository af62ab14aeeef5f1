package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"plangenie/internal/catalog"
)

// Warmer refreshes the catalog when it is older than its TTL.
type Warmer interface {
	EnsureFresh(ctx context.Context) (*catalog.Snapshot, error)
}

// Sweeper drops expired entries from an in-process store.
type Sweeper interface {
	Sweep() int
}

// CatalogRefresher keeps the catalog warm in the background so queries rarely
// pay for a fetch.
type CatalogRefresher struct {
	catalog  Warmer
	interval time.Duration
	sweepers []Sweeper
	logger   *zap.Logger
}

// NewCatalogRefresher creates a refresher. Each sweeper is swept on every tick.
func NewCatalogRefresher(w Warmer, interval time.Duration, logger *zap.Logger, sweepers ...Sweeper) *CatalogRefresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogRefresher{catalog: w, interval: interval, sweepers: sweepers, logger: logger}
}

// Start runs until ctx is cancelled.
func (r *CatalogRefresher) Start(ctx context.Context) {
	r.logger.Info("catalog refresher started", zap.Duration("interval", r.interval))

	// Run immediately on start
	r.tick(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("catalog refresher stopped")
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *CatalogRefresher) tick(ctx context.Context) {
	snap, err := r.catalog.EnsureFresh(ctx)
	switch {
	case err != nil:
		if ctx.Err() == nil {
			r.logger.Error("catalog refresh failed", zap.Error(err))
		}
	case snap.Stale:
		r.logger.Warn("catalog refresh failed, keeping stale copy", zap.Time("fetched_at", snap.FetchedAt))
	}

	for _, s := range r.sweepers {
		if n := s.Sweep(); n > 0 {
			r.logger.Debug("swept expired cache entries", zap.Int("count", n))
		}
	}
}
