package governor

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"plangenie/internal/kv"
	"plangenie/internal/models"
)

const cachePrefix = "resp:"

type cacheEntry struct {
	CreatedAt time.Time       `json:"createdAt"`
	Payload   json.RawMessage `json:"payload"`
}

// ResponseCache memoizes pipeline output for a fixed TTL.
type ResponseCache struct {
	store  kv.Store
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewResponseCache creates a cache over store. A ttl of zero or less
// disables caching.
func NewResponseCache(store kv.Store, ttl time.Duration, now func() time.Time, logger *zap.Logger) *ResponseCache {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResponseCache{store: store, ttl: ttl, now: now, logger: logger}
}

// CacheKey hashes the request shape: text, page offset and the carried
// filter of a continuation (nil for fresh queries).
func CacheKey(text string, offset int, carried *models.Filter) string {
	shape := struct {
		Text   string         `json:"text"`
		Offset int            `json:"offset"`
		Filter *models.Filter `json:"filter"`
	}{text, offset, carried}

	h := sha256.New()
	data, _ := json.Marshal(shape)
	h.Write(data)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Get returns a live cached response.
func (c *ResponseCache) Get(key string) (*models.QueryResponse, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	raw, err := c.store.Get(cachePrefix + key)
	if err != nil {
		c.logger.Warn("response cache read failed", zap.Error(err))
		return nil, false
	}
	if raw == nil {
		return nil, false
	}

	var e cacheEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false
	}
	if c.now().Sub(e.CreatedAt) >= c.ttl {
		return nil, false
	}

	var resp models.QueryResponse
	if err := json.Unmarshal(e.Payload, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

// Put stores resp under key.
func (c *ResponseCache) Put(key string, resp *models.QueryResponse) {
	if c.ttl <= 0 {
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		c.logger.Warn("response cache encode failed", zap.Error(err))
		return
	}
	data, _ := json.Marshal(cacheEntry{CreatedAt: c.now(), Payload: payload})
	if err := c.store.Set(cachePrefix+key, data, c.ttl); err != nil {
		c.logger.Warn("response cache write failed", zap.Error(err))
	}
}
