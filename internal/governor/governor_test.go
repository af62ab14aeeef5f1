package governor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plangenie/internal/catalog"
	"plangenie/internal/kv"
	"plangenie/internal/models"
	"plangenie/internal/reply"
	"plangenie/internal/resolver"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock { return &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)} }

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeCatalog struct {
	plans []models.Plan
	err   error
	calls int
}

func (f *fakeCatalog) EnsureFresh(ctx context.Context) (*catalog.Snapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &catalog.Snapshot{Plans: f.plans, FetchedAt: time.Now()}, nil
}

// fakeLLM answers filter extraction with extraction and anything else with summary.
type fakeLLM struct {
	mu         sync.Mutex
	extraction string
	summary    string
	calls      int
}

func (f *fakeLLM) Complete(ctx context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if system == "You extract structured filters from user queries." {
		return f.extraction, nil
	}
	if f.summary == "" {
		return "", errors.New("unavailable")
	}
	return f.summary, nil
}

type countingResolver struct {
	filter models.Filter
	calls  int
}

func (r *countingResolver) Resolve(ctx context.Context, text string) models.Filter {
	r.calls++
	return r.filter
}

func plans() []models.Plan {
	mk := func(op string, price int64, days int) models.Plan {
		return models.Plan{Operator: op, Type: "prepaid", Price: decimal.NewFromInt(price), PriceKnown: true, ValidityDays: days, Data: "1GB/day"}
	}
	return []models.Plan{
		mk("airtel", 299, 84),
		mk("jio", 199, 28),
		mk("jio", 149, 20),
		mk("jio", 349, 28),
		mk("jio", 249, 28),
		mk("vi", 179, 28),
		mk("jio", 399, 56),
	}
}

func TestLimiter_ThresholdAndWindowReset(t *testing.T) {
	c := newClock()
	l := NewLimiter(kv.NewMemory(c.now), 3, time.Minute, c.now, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Allow("1.2.3.4"), "request %d", i+1)
	}
	assert.ErrorIs(t, l.Allow("1.2.3.4"), ErrRateLimited)
	assert.ErrorIs(t, l.Allow("1.2.3.4"), ErrRateLimited)

	// other clients have their own bucket
	assert.NoError(t, l.Allow("5.6.7.8"))

	// the window end itself still belongs to the old window
	c.advance(time.Minute)
	assert.ErrorIs(t, l.Allow("1.2.3.4"), ErrRateLimited)

	c.advance(time.Millisecond)
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Allow("1.2.3.4"))
	}
	assert.ErrorIs(t, l.Allow("1.2.3.4"), ErrRateLimited)
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(kv.NewMemory(nil), 0, time.Minute, nil, nil)
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Allow("x"))
	}
}

func TestResponseCache_TTL(t *testing.T) {
	c := newClock()
	cache := NewResponseCache(kv.NewMemory(c.now), 5*time.Minute, c.now, nil)
	key := CacheKey("jio plans", 0, nil)

	_, ok := cache.Get(key)
	assert.False(t, ok)

	cache.Put(key, &models.QueryResponse{Reply: "hi", Plans: []models.Plan{}})
	got, ok := cache.Get(key)
	require.True(t, ok)
	assert.Equal(t, "hi", got.Reply)

	c.advance(5 * time.Minute)
	_, ok = cache.Get(key)
	assert.False(t, ok)
}

func TestCacheKey(t *testing.T) {
	op := "jio"
	assert.Equal(t, CacheKey("a", 0, nil), CacheKey("a", 0, nil))
	assert.NotEqual(t, CacheKey("a", 0, nil), CacheKey("a", 3, nil))
	assert.NotEqual(t, CacheKey("more", 3, &models.Filter{}), CacheKey("more", 3, &models.Filter{Operator: &op}))
	assert.NotEqual(t, CacheKey("a", 0, nil), CacheKey("b", 0, nil))
}

func newTestPipeline(t *testing.T, cat Catalog, llm *fakeLLM, c *clock) *Pipeline {
	t.Helper()
	store := kv.NewMemory(c.now)
	return NewPipeline(Deps{
		Catalog:  cat,
		Resolver: resolver.New(llm, time.Second, nil),
		Composer: reply.NewComposer(llm, time.Second, nil),
		Canned:   reply.NewCanned(nil, func(int) int { return 0 }),
		Limiter:  NewLimiter(store, 30, time.Minute, c.now, nil),
		Cache:    NewResponseCache(store, 5*time.Minute, c.now, nil),
		PageSize: 3,
	})
}

func TestQuery_BudgetScenario(t *testing.T) {
	cat := &fakeCatalog{plans: []models.Plan{plans()[0], plans()[1]}}
	llm := &fakeLLM{extraction: `{"budget": 250}`}
	p := newTestPipeline(t, cat, llm, newClock())

	resp, err := p.Query(context.Background(), "c1", models.QueryRequest{Text: "plans under 250"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Plans, 1)
	assert.Equal(t, "jio", resp.Plans[0].Operator)
	assert.Nil(t, resp.NextOffset)
	assert.Contains(t, resp.Reply, "(Showing 1–1 of 1)")
}

func TestQuery_CachedResponseIsIdenticalWithoutLLM(t *testing.T) {
	cat := &fakeCatalog{plans: plans()}
	llm := &fakeLLM{extraction: `{"operator": "geo"}`, summary: "Hey there! Plan 1 is cheapest."}
	c := newClock()
	p := newTestPipeline(t, cat, llm, c)

	first, err := p.Query(context.Background(), "c1", models.QueryRequest{Text: "cheap geo plans"})
	require.NoError(t, err)
	assert.Equal(t, 2, llm.calls)
	assert.Equal(t, "jio", *first.Filters.Operator)

	c.advance(time.Minute)
	second, err := p.Query(context.Background(), "c1", models.QueryRequest{Text: "cheap geo plans"})
	require.NoError(t, err)
	assert.Equal(t, 2, llm.calls, "cached query must not call the LLM")
	assert.Equal(t, 1, cat.calls)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	assert.Equal(t, string(a), string(b))

	c.advance(5 * time.Minute)
	_, err = p.Query(context.Background(), "c1", models.QueryRequest{Text: "cheap geo plans"})
	require.NoError(t, err)
	assert.Equal(t, 4, llm.calls, "expired entry runs the pipeline again")
}

func TestQuery_CatalogUnavailable(t *testing.T) {
	cat := &fakeCatalog{err: fmt.Errorf("%w: dial tcp: refused", catalog.ErrCatalogUnavailable)}
	llm := &fakeLLM{extraction: `{}`}
	p := newTestPipeline(t, cat, llm, newClock())

	resp, err := p.Query(context.Background(), "c1", models.QueryRequest{Text: "jio plans"})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, catalog.ErrCatalogUnavailable)

	// failures are not memoized
	cat.err = nil
	cat.plans = plans()
	resp, err = p.Query(context.Background(), "c1", models.QueryRequest{Text: "jio plans"})
	require.NoError(t, err)
	assert.Equal(t, 7, resp.Total)
}

func TestQuery_ContinuationSkipsResolver(t *testing.T) {
	op := "jio"
	res := &countingResolver{filter: models.Filter{Operator: &op}}
	p := NewPipeline(Deps{
		Catalog:  &fakeCatalog{plans: plans()},
		Resolver: res,
		PageSize: 3,
	})
	ctx := context.Background()

	first, err := p.Query(ctx, "c1", models.QueryRequest{Text: "jio plans"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.calls)
	assert.Equal(t, 5, first.Total)
	require.NotNil(t, first.NextOffset)
	assert.Equal(t, 3, *first.NextOffset)

	second, err := p.Query(ctx, "c1", models.QueryRequest{
		Text:        "show more",
		LastFilters: first.Filters,
		LastOffset:  &first.Offset,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.calls, "continuation must reuse the carried filter")
	assert.Equal(t, "showmore", second.Intent)
	assert.Equal(t, 3, second.Offset)
	assert.Equal(t, 2, second.Count)
	assert.Nil(t, second.NextOffset)

	var prices []string
	for _, pl := range append(first.Plans, second.Plans...) {
		assert.Equal(t, "jio", pl.Operator)
		prices = append(prices, pl.Price.String())
	}
	assert.Equal(t, []string{"149", "199", "249", "349", "399"}, prices)
}

func TestQuery_CannedIntentsBypassPipeline(t *testing.T) {
	cat := &fakeCatalog{plans: plans()}
	llm := &fakeLLM{extraction: `{}`}
	p := newTestPipeline(t, cat, llm, newClock())

	for _, text := range []string{"hi", "thank you", "bye", "how are you"} {
		resp, err := p.Query(context.Background(), "c1", models.QueryRequest{Text: text})
		require.NoError(t, err, text)
		assert.NotEmpty(t, resp.Reply)
		assert.NotEmpty(t, resp.Intent)
		assert.Empty(t, resp.Plans)
	}
	assert.Equal(t, 0, cat.calls)
	assert.Equal(t, 0, llm.calls)
}

func TestQuery_FeedbackWordsStillRunPipeline(t *testing.T) {
	op := "jio"
	res := &countingResolver{filter: models.Filter{Operator: &op}}
	cat := &fakeCatalog{plans: plans()}
	p := NewPipeline(Deps{Catalog: cat, Resolver: res, PageSize: 3})

	resp, err := p.Query(context.Background(), "c1", models.QueryRequest{Text: "which jio plan is most helpful for netflix under 300"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.calls)
	assert.Equal(t, 1, cat.calls)
	assert.Empty(t, resp.Intent)
	assert.Equal(t, 5, resp.Total)
	assert.Len(t, resp.Plans, 3)
}

func TestQuery_ContinuationOffsetIsBounded(t *testing.T) {
	p := NewPipeline(Deps{Catalog: &fakeCatalog{plans: plans()}, PageSize: 3})
	last := math.MaxInt

	resp, err := p.Query(context.Background(), "c1", models.QueryRequest{Text: "more", LastOffset: &last})
	require.NoError(t, err)
	assert.Equal(t, MaxOffset+3, resp.Offset)
	assert.Equal(t, 7, resp.Total)
	assert.Empty(t, resp.Plans)
	assert.Nil(t, resp.NextOffset)
	assert.NotContains(t, resp.Reply, "-")
}

func TestQuery_EmptyText(t *testing.T) {
	p := newTestPipeline(t, &fakeCatalog{}, &fakeLLM{}, newClock())
	_, err := p.Query(context.Background(), "c1", models.QueryRequest{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestQuery_RateLimited(t *testing.T) {
	c := newClock()
	p := NewPipeline(Deps{
		Catalog: &fakeCatalog{plans: plans()},
		Limiter: NewLimiter(kv.NewMemory(c.now), 2, time.Minute, c.now, nil),
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := p.Query(ctx, "c1", models.QueryRequest{Text: "hi"})
		require.NoError(t, err)
	}
	_, err := p.Query(ctx, "c1", models.QueryRequest{Text: "hi"})
	assert.ErrorIs(t, err, ErrRateLimited)

	c.advance(time.Minute + time.Second)
	_, err = p.Query(ctx, "c1", models.QueryRequest{Text: "hi"})
	assert.NoError(t, err)
}

type recorder struct {
	outcomes []string
	hits     int
	misses   int
}

func (r *recorder) ObserveQuery(outcome string, elapsed time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recorder) ObserveCacheLookup(hit bool) {
	if hit {
		r.hits++
	} else {
		r.misses++
	}
}

func TestQuery_RecordsOutcomes(t *testing.T) {
	rec := &recorder{}
	c := newClock()
	p := NewPipeline(Deps{
		Catalog:  &fakeCatalog{plans: plans()},
		Cache:    NewResponseCache(kv.NewMemory(c.now), time.Minute, c.now, nil),
		Recorder: rec,
	})
	ctx := context.Background()

	_, _ = p.Query(ctx, "c1", models.QueryRequest{Text: "plans"})
	_, _ = p.Query(ctx, "c1", models.QueryRequest{Text: "plans"})
	_, _ = p.Query(ctx, "c1", models.QueryRequest{Text: "hello"})
	_, _ = p.Query(ctx, "c1", models.QueryRequest{Text: ""})

	assert.Equal(t, []string{OutcomeAnswered, OutcomeCached, OutcomeCanned, OutcomeRejected}, rec.outcomes)
	assert.Equal(t, 1, rec.hits)
	assert.Equal(t, 1, rec.misses)
}
