// Package governor admits, memoizes and runs plan queries end to end.
package governor

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"plangenie/internal/catalog"
	"plangenie/internal/models"
	"plangenie/internal/ranking"
	"plangenie/internal/reply"
)

// DefaultPageSize is the number of plans surfaced per turn.
const DefaultPageSize = 3

// MaxOffset caps the client-supplied continuation offset.
const MaxOffset = 10000

// Query outcomes reported to the Recorder.
const (
	OutcomeCanned      = "canned"
	OutcomeCached      = "cached"
	OutcomeAnswered    = "answered"
	OutcomeRateLimited = "rate_limited"
	OutcomeRejected    = "rejected"
	OutcomeUnavailable = "unavailable"
)

// Catalog supplies the current plan snapshot.
type Catalog interface {
	EnsureFresh(ctx context.Context) (*catalog.Snapshot, error)
}

// FilterResolver turns text into a filter. It must not fail.
type FilterResolver interface {
	Resolve(ctx context.Context, text string) models.Filter
}

// ReplyComposer writes the reply for a result page. It must not fail.
type ReplyComposer interface {
	Compose(ctx context.Context, text string, f models.Filter, page []models.Plan, total, offset int) string
}

// Recorder receives per-query measurements.
type Recorder interface {
	ObserveQuery(outcome string, elapsed time.Duration)
	ObserveCacheLookup(hit bool)
}

// Deps wires the pipeline's collaborators.
type Deps struct {
	Catalog  Catalog
	Resolver FilterResolver
	Composer ReplyComposer
	Canned   *reply.Canned
	Limiter  *Limiter
	Cache    *ResponseCache
	Recorder Recorder
	PageSize int
	Logger   *zap.Logger
}

// Pipeline runs one query turn.
type Pipeline struct {
	Deps
}

// NewPipeline fills defaults for optional dependencies.
func NewPipeline(d Deps) *Pipeline {
	if d.PageSize <= 0 {
		d.PageSize = DefaultPageSize
	}
	if d.Canned == nil {
		d.Canned = reply.NewCanned(nil, nil)
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Pipeline{Deps: d}
}

// Query admits the client, answers canned intents directly, and otherwise
// runs resolve → catalog → rank → compose, memoizing the result.
// Errors are ErrRateLimited, ErrEmptyQuery, catalog.ErrCatalogUnavailable or
// context errors.
func (p *Pipeline) Query(ctx context.Context, client string, req models.QueryRequest) (resp *models.QueryResponse, err error) {
	start := time.Now()
	outcome := OutcomeAnswered
	log := p.Logger.With(zap.String("query_id", uuid.NewString()), zap.String("client", client))
	defer func() {
		if p.Recorder != nil {
			p.Recorder.ObserveQuery(outcome, time.Since(start))
		}
	}()

	if p.Limiter != nil {
		if err := p.Limiter.Allow(client); err != nil {
			outcome = OutcomeRateLimited
			log.Info("query throttled")
			return nil, err
		}
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		outcome = OutcomeRejected
		return nil, ErrEmptyQuery
	}

	intent := reply.DetectIntent(text)
	if intent.IsCanned() {
		if msg, ok := p.Canned.Reply(intent); ok {
			outcome = OutcomeCanned
			return &models.QueryResponse{Intent: string(intent), Reply: msg, Plans: []models.Plan{}}, nil
		}
	}

	offset := 0
	var carried *models.Filter
	if intent == reply.IntentShowMore {
		carried = &models.Filter{}
		if req.LastFilters != nil {
			carried = req.LastFilters
		}
		if req.LastOffset != nil && *req.LastOffset > 0 {
			offset = min(*req.LastOffset, MaxOffset)
		}
		offset += p.PageSize
	}

	key := CacheKey(text, offset, carried)
	if p.Cache != nil {
		cached, hit := p.Cache.Get(key)
		if p.Recorder != nil {
			p.Recorder.ObserveCacheLookup(hit)
		}
		if hit {
			outcome = OutcomeCached
			log.Debug("response cache hit")
			return cached, nil
		}
	}

	var filter models.Filter
	if carried != nil {
		filter = *carried
	} else if p.Resolver != nil {
		filter = p.Resolver.Resolve(ctx, text)
	}

	snap, err := p.Catalog.EnsureFresh(ctx)
	if err != nil {
		outcome = OutcomeUnavailable
		log.Error("catalog unavailable", zap.Error(err))
		return nil, err
	}
	if snap.Stale {
		log.Warn("serving stale catalog", zap.Time("fetched_at", snap.FetchedAt))
	}

	result := ranking.Apply(snap.Plans, filter, offset, p.PageSize)

	var msg string
	if p.Composer != nil {
		msg = p.Composer.Compose(ctx, text, filter, result.Page, result.Total, offset)
	} else {
		msg = reply.Format(filter, result.Page, result.Total, offset)
	}

	resp = &models.QueryResponse{
		Filters: &filter,
		Count:   len(result.Page),
		Total:   result.Total,
		Offset:  offset,
		Reply:   msg,
		Plans:   result.Page,
	}
	if intent == reply.IntentShowMore {
		resp.Intent = string(intent)
	}
	if offset+len(result.Page) < result.Total {
		next := offset + p.PageSize
		resp.NextOffset = &next
	}

	if p.Cache != nil {
		p.Cache.Put(key, resp)
	}
	log.Info("query answered",
		zap.String("intent", string(intent)),
		zap.Int("total", result.Total),
		zap.Int("offset", offset),
		zap.Int("count", resp.Count),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, nil
}
