// Package llm talks to text-completion providers. Callers own timeouts and
// fallbacks; nothing in here retries.
package llm

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotConfigured is returned when the provider has no credentials.
	ErrNotConfigured = errors.New("llm provider not configured")
	// ErrNoCompletion is returned when the provider answered without any content.
	ErrNoCompletion = errors.New("no completion returned")
)

// Completer sends a system instruction and a user message and returns the model's text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Call outcomes reported to an Observer.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

// Observer receives one call per completion.
type Observer interface {
	ObserveLLMCall(purpose, outcome string, elapsed time.Duration)
}

type observed struct {
	next     Completer
	purpose  string
	observer Observer
}

// WithObserver reports every call made through c under the given purpose label.
func WithObserver(c Completer, purpose string, o Observer) Completer {
	if o == nil {
		return c
	}
	return &observed{next: c, purpose: purpose, observer: o}
}

func (o *observed) Complete(ctx context.Context, system, user string) (string, error) {
	start := time.Now()
	out, err := o.next.Complete(ctx, system, user)
	outcome := OutcomeSuccess
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		outcome = OutcomeTimeout
	case err != nil:
		outcome = OutcomeError
	}
	o.observer.ObserveLLMCall(o.purpose, outcome, time.Since(start))
	return out, err
}
