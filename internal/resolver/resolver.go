// Package resolver turns free-text questions into a structured plan Filter.
// Semantic extraction is delegated to an LLM; everything it returns is
// sanity-checked and normalized here.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"plangenie/internal/llm"
	"plangenie/internal/models"
)

// ErrExtractionMalformed is logged when the model output is not a JSON object.
// Resolve never returns it.
var ErrExtractionMalformed = errors.New("malformed filter extraction")

const systemPrompt = "You extract structured filters from user queries."

// Resolver extracts filters through an LLM.
type Resolver struct {
	llm     llm.Completer
	timeout time.Duration
	aliases map[string]string
	logger  *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAliases adds operator aliases (lower-case alias → canonical operator).
func WithAliases(aliases map[string]string) Option {
	return func(r *Resolver) { r.aliases = aliases }
}

// New creates a Resolver. timeout bounds each extraction call.
func New(c llm.Completer, timeout time.Duration, logger *zap.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{llm: c, timeout: timeout, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve always returns a best-effort Filter; on any extractor failure the
// filter is empty.
func (r *Resolver) Resolve(ctx context.Context, text string) models.Filter {
	if r.llm == nil {
		return models.Filter{}
	}

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	out, err := r.llm.Complete(callCtx, systemPrompt, extractionPrompt(text))
	if err != nil {
		r.logger.Warn("filter extraction failed", zap.Error(err))
		return models.Filter{}
	}

	filter, err := ParseExtraction(out, r.aliases)
	if err != nil {
		r.logger.Warn("filter extraction unusable", zap.Error(err), zap.String("output", truncate(out, 200)))
		return models.Filter{}
	}
	return filter
}

func extractionPrompt(text string) string {
	return fmt.Sprintf(`Extract operator, budget (₹), validity (days), plan type, and feature list (like "ott", "international roaming", "voice only", "data only") from this: %q. Respond only with JSON: {"operator":...,"budget":...,"validity":...,"type":...,"features":...}. Use null for anything not mentioned.`, text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
