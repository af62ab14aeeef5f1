// Package catalog fetches, normalizes and caches the remote plan catalog.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"plangenie/internal/models"
)

// Fetch outcomes reported to the Observer.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Observer receives one call per fetch attempt.
type Observer interface {
	ObserveCatalogFetch(outcome string, elapsed time.Duration)
}

// Options tunes a Store.
type Options struct {
	TTL     time.Duration // maximum age before a refresh is attempted
	Timeout time.Duration // per-attempt fetch timeout
	Retries int           // attempts after the first one
	Backoff time.Duration // wait before retry n is Backoff*n
	Now     func() time.Time
}

// DefaultOptions mirrors the production settings.
func DefaultOptions() Options {
	return Options{
		TTL:     time.Hour,
		Timeout: 5 * time.Second,
		Retries: 2,
		Backoff: time.Second,
	}
}

// Snapshot is one generation of the catalog.
type Snapshot struct {
	Catalog   *models.RawCatalog
	Plans     []models.Plan
	FetchedAt time.Time
	Stale     bool
}

// Status summarizes the cache for health reporting.
type Status struct {
	Loaded    bool
	FetchedAt time.Time
	Plans     int
	Stale     bool
}

// Store caches the catalog in memory and refreshes it when older than the TTL.
// A failed refresh never discards a previously good catalog.
type Store struct {
	source   Source
	opts     Options
	logger   *zap.Logger
	observer Observer

	mu          sync.RWMutex
	current     *Snapshot
	invalidated bool

	group singleflight.Group
}

// NewStore creates a Store reading from source.
func NewStore(source Source, opts Options, logger *zap.Logger) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{source: source, opts: opts, logger: logger}
}

// SetObserver registers a fetch observer (metrics).
func (s *Store) SetObserver(o Observer) {
	s.observer = o
}

// EnsureFresh returns the cached catalog when it is younger than the TTL and
// otherwise refreshes it. Concurrent refreshes are collapsed into one.
func (s *Store) EnsureFresh(ctx context.Context) (*Snapshot, error) {
	if snap, ok := s.fresh(); ok {
		return snap, nil
	}

	v, err, _ := s.group.Do("refresh", func() (any, error) {
		// Another caller may have refreshed while we waited for the group.
		if snap, ok := s.fresh(); ok {
			return snap, nil
		}
		return s.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Invalidate forces the next EnsureFresh to refetch. The current catalog stays
// available as a stale fallback.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.invalidated = true
	s.mu.Unlock()
}

// Status reports the cache state without touching the network.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Status{}
	}
	return Status{
		Loaded:    true,
		FetchedAt: s.current.FetchedAt,
		Plans:     len(s.current.Plans),
		Stale:     s.isStaleLocked(),
	}
}

// TTL returns the configured time-to-live.
func (s *Store) TTL() time.Duration {
	return s.opts.TTL
}

func (s *Store) fresh() (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || s.isStaleLocked() {
		return nil, false
	}
	return s.current, true
}

func (s *Store) isStaleLocked() bool {
	return s.invalidated || s.opts.Now().Sub(s.current.FetchedAt) >= s.opts.TTL
}

func (s *Store) refresh(ctx context.Context) (*Snapshot, error) {
	var lastErr error
	attempts := s.opts.Retries + 1

	for attempt := 1; attempt <= attempts; attempt++ {
		startedAt := s.opts.Now()
		raw, err := s.fetchOnce(ctx)
		elapsed := s.opts.Now().Sub(startedAt)

		if err == nil {
			s.observe(OutcomeSuccess, elapsed)
			snap := s.install(raw, startedAt)
			s.logger.Info("catalog refreshed",
				zap.String("source", s.source.Name()),
				zap.Int("plans", len(snap.Plans)),
				zap.Int("attempt", attempt),
			)
			return snap, nil
		}

		lastErr = err
		s.observe(OutcomeFailure, elapsed)
		s.logger.Warn("catalog fetch failed",
			zap.String("source", s.source.Name()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt == attempts {
			break
		}
		if err := s.wait(ctx, s.opts.Backoff*time.Duration(attempt)); err != nil {
			lastErr = err
			break
		}
	}

	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()

	if current == nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, lastErr)
	}

	s.logger.Warn("serving stale catalog", zap.Time("fetched_at", current.FetchedAt))
	stale := *current
	stale.Stale = true
	return &stale, nil
}

func (s *Store) fetchOnce(ctx context.Context) (*models.RawCatalog, error) {
	attemptCtx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	return s.source.Fetch(attemptCtx)
}

// install replaces the cached catalog unless a newer one was stored meanwhile.
// Either way the fetch succeeded, so the cache is valid again.
func (s *Store) install(raw *models.RawCatalog, fetchedAt time.Time) *Snapshot {
	snap := &Snapshot{
		Catalog:   raw,
		Plans:     Flatten(raw),
		FetchedAt: fetchedAt,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = false
	if s.current != nil && !fetchedAt.After(s.current.FetchedAt) {
		return s.current
	}
	s.current = snap
	return snap
}

func (s *Store) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Store) observe(outcome string, elapsed time.Duration) {
	if s.observer != nil {
		s.observer.ObserveCatalogFetch(outcome, elapsed)
	}
}
