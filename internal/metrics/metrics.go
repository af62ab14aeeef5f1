package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"plangenie/internal/catalog"
)

const namespace = "plangenie"

var (
	catalogPlansDesc = prometheus.NewDesc(
		namespace+"_catalog_plans",
		"Number of normalized plans in the cached catalog",
		nil, nil,
	)
	catalogAgeDesc = prometheus.NewDesc(
		namespace+"_catalog_age_seconds",
		"Seconds since the cached catalog was fetched",
		nil, nil,
	)
	catalogStaleDesc = prometheus.NewDesc(
		namespace+"_catalog_stale",
		"1 when the cached catalog is older than its TTL",
		nil, nil,
	)
)

// StatusFunc reports the catalog cache state.
type StatusFunc func() catalog.Status

// CatalogCollector is a custom Prometheus collector that reads the catalog
// cache state on each scrape.
type CatalogCollector struct {
	status StatusFunc
	now    func() time.Time
}

// NewCatalogCollector creates a collector over status.
func NewCatalogCollector(status StatusFunc) *CatalogCollector {
	return &CatalogCollector{status: status, now: time.Now}
}

// Describe sends the metric descriptors to the channel.
func (c *CatalogCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- catalogPlansDesc
	ch <- catalogAgeDesc
	ch <- catalogStaleDesc
}

// Collect emits nothing until the first catalog load.
func (c *CatalogCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.status()
	if !st.Loaded {
		return
	}
	stale := 0.0
	if st.Stale {
		stale = 1
	}
	ch <- prometheus.MustNewConstMetric(catalogPlansDesc, prometheus.GaugeValue, float64(st.Plans))
	ch <- prometheus.MustNewConstMetric(catalogAgeDesc, prometheus.GaugeValue, c.now().Sub(st.FetchedAt).Seconds())
	ch <- prometheus.MustNewConstMetric(catalogStaleDesc, prometheus.GaugeValue, stale)
}

// Recorder holds the pipeline counters. It satisfies catalog.Observer,
// llm.Observer and governor.Recorder.
type Recorder struct {
	catalogFetches *prometheus.CounterVec
	catalogLatency prometheus.Histogram
	llmCalls       *prometheus.CounterVec
	llmLatency     *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec
	queries        *prometheus.CounterVec
	queryLatency   prometheus.Histogram
}

// New registers the recorder's metrics, plus a CatalogCollector when status
// is non-nil, on reg.
func New(reg prometheus.Registerer, status StatusFunc) *Recorder {
	r := &Recorder{
		catalogFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_fetches_total",
			Help:      "Catalog fetch attempts by outcome",
		}, []string{"outcome"}),
		catalogLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_fetch_duration_seconds",
			Help:      "Catalog fetch attempt latency",
			Buckets:   prometheus.DefBuckets,
		}),
		llmCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_calls_total",
			Help:      "LLM completions by purpose and outcome",
		}, []string{"purpose", "outcome"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_call_duration_seconds",
			Help:      "LLM completion latency by purpose",
			Buckets:   []float64{0.25, 0.5, 1, 2, 3.5, 5, 8, 15},
		}, []string{"purpose"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_cache_lookups_total",
			Help:      "Response cache lookups by result",
		}, []string{"result"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Queries by outcome",
		}, []string{"outcome"}),
		queryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "End-to-end query latency",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		r.catalogFetches, r.catalogLatency,
		r.llmCalls, r.llmLatency,
		r.cacheLookups,
		r.queries, r.queryLatency,
	)
	if status != nil {
		reg.MustRegister(NewCatalogCollector(status))
	}
	return r
}

// ObserveCatalogFetch records one fetch attempt.
func (r *Recorder) ObserveCatalogFetch(outcome string, elapsed time.Duration) {
	r.catalogFetches.WithLabelValues(outcome).Inc()
	r.catalogLatency.Observe(elapsed.Seconds())
}

// ObserveLLMCall records one completion.
func (r *Recorder) ObserveLLMCall(purpose, outcome string, elapsed time.Duration) {
	r.llmCalls.WithLabelValues(purpose, outcome).Inc()
	r.llmLatency.WithLabelValues(purpose).Observe(elapsed.Seconds())
}

// ObserveCacheLookup records a response cache hit or miss.
func (r *Recorder) ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveQuery records one finished query.
func (r *Recorder) ObserveQuery(outcome string, elapsed time.Duration) {
	r.queries.WithLabelValues(outcome).Inc()
	r.queryLatency.Observe(elapsed.Seconds())
}
