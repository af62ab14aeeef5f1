package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"plangenie/internal/catalog"
	"plangenie/internal/config"
	"plangenie/internal/governor"
	"plangenie/internal/kv"
	"plangenie/internal/llm"
	"plangenie/internal/metrics"
	"plangenie/internal/reply"
	"plangenie/internal/resolver"
)

// components is the fully wired query pipeline and its collaborators.
type components struct {
	catalog  *catalog.Store
	source   catalog.Source
	pipeline *governor.Pipeline
	store    kv.Store
	memory   *kv.Memory // nil when Redis backs the caches
}

func (c *components) Close() error {
	return c.store.Close()
}

func newCatalogStore(cfg *config.Config, log *zap.Logger) (*catalog.Store, catalog.Source) {
	var src catalog.Source
	if cfg.CatalogFile != "" {
		src = catalog.NewFileSource(cfg.CatalogFile)
	} else {
		src = catalog.NewHTTPSource(cfg.CatalogURL, &http.Client{})
	}

	opts := catalog.Options{
		TTL:     cfg.CatalogTTL,
		Timeout: cfg.CatalogFetchTimeout,
		Retries: cfg.CatalogRetries,
		Backoff: cfg.CatalogBackoff,
	}
	return catalog.NewStore(src, opts, log.Named("catalog")), src
}

func newCompleter(ctx context.Context, cfg *config.Config) (llm.Completer, error) {
	if !cfg.LLMConfigured() {
		return nil, llm.ErrNotConfigured
	}
	if cfg.LLMProvider == config.ProviderGemini {
		return llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	}

	chat := llm.DefaultChatConfig(cfg.LLMAPIKey)
	chat.BaseURL = cfg.LLMBaseURL
	chat.Model = cfg.LLMModel
	return llm.NewChatClient(chat), nil
}

// wire builds every pipeline component. rec may be nil.
func wire(ctx context.Context, cfg *config.Config, tuning *config.YAMLConfig, log *zap.Logger, reg prometheus.Registerer) (*components, error) {
	store, src := newCatalogStore(cfg, log)

	var rec *metrics.Recorder
	if reg != nil {
		rec = metrics.New(reg, store.Status)
		store.SetObserver(rec)
	}

	completer, err := newCompleter(ctx, cfg)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		log.Warn("no LLM credentials, using deterministic filters and replies", zap.String("provider", cfg.LLMProvider))
	case err != nil:
		return nil, fmt.Errorf("create llm client: %w", err)
	}

	var extractor, writer llm.Completer
	if completer != nil {
		if rec != nil {
			extractor = llm.WithObserver(completer, "extract", rec)
			writer = llm.WithObserver(completer, "reply", rec)
		} else {
			extractor, writer = completer, completer
		}
	}

	var kvStore kv.Store
	var memory *kv.Memory
	if cfg.RedisURL != "" {
		kvStore = kv.NewRedis(cfg.RedisURL)
		log.Info("using redis for response cache and rate limits")
	} else {
		memory = kv.NewMemory(nil)
		kvStore = memory
	}

	deps := governor.Deps{
		Catalog:  store,
		Resolver: resolver.New(extractor, cfg.LLMExtractTimeout, log.Named("resolver"), resolver.WithAliases(tuning.Aliases())),
		Composer: reply.NewComposer(writer, cfg.LLMReplyTimeout, log.Named("reply")),
		Canned:   reply.NewCanned(tuning.Replies(), nil),
		Limiter:  governor.NewLimiter(kvStore, cfg.RateLimitMax, cfg.RateLimitWindow, nil, log.Named("limiter")),
		Cache:    governor.NewResponseCache(kvStore, cfg.ResponseCacheTTL, nil, log.Named("cache")),
		PageSize: cfg.PageSize,
		Logger:   log.Named("pipeline"),
	}
	if rec != nil {
		deps.Recorder = rec
	}

	return &components{
		catalog:  store,
		source:   src,
		pipeline: governor.NewPipeline(deps),
		store:    kvStore,
		memory:   memory,
	}, nil
}
