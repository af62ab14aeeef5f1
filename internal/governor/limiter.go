package governor

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"plangenie/internal/kv"
)

const limiterPrefix = "rl:"

type bucket struct {
	Count        int       `json:"count"`
	WindowEndsAt time.Time `json:"windowEndsAt"`
}

// Limiter is a fixed-window per-client request counter.
type Limiter struct {
	store  kv.Store
	max    int
	window time.Duration
	now    func() time.Time
	logger *zap.Logger

	mu sync.Mutex
}

// NewLimiter allows max requests per window for each client. A max of zero
// or less disables limiting.
func NewLimiter(store kv.Store, max int, window time.Duration, now func() time.Time, logger *zap.Logger) *Limiter {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{store: store, max: max, window: window, now: now, logger: logger}
}

// Allow counts one request for client and returns ErrRateLimited once the
// count exceeds the limit within the current window. Storage failures admit
// the request.
func (l *Limiter) Allow(client string) error {
	if l.max <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := limiterPrefix + client
	now := l.now()

	var b bucket
	raw, err := l.store.Get(key)
	if err != nil {
		l.logger.Warn("rate limit lookup failed", zap.String("client", client), zap.Error(err))
		return nil
	}
	if raw != nil {
		if err := json.Unmarshal(raw, &b); err != nil {
			b = bucket{}
		}
	}

	if raw == nil || now.After(b.WindowEndsAt) {
		b = bucket{WindowEndsAt: now.Add(l.window)}
	}
	b.Count++

	data, _ := json.Marshal(b)
	if err := l.store.Set(key, data, b.WindowEndsAt.Sub(now)+l.window); err != nil {
		l.logger.Warn("rate limit update failed", zap.String("client", client), zap.Error(err))
	}

	if b.Count > l.max {
		return ErrRateLimited
	}
	return nil
}
