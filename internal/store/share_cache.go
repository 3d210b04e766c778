package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pmp-reports/internal/domain"
)

const shareKeyPrefix = "report:share:"

// ShareCache caches share-token lookups of stored reports.
// A nil *ShareCache is valid and caches nothing.
type ShareCache struct {
	kv  KV
	ttl time.Duration
}

func NewShareCache(kv KV, ttl time.Duration) *ShareCache {
	if kv == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ShareCache{kv: kv, ttl: ttl}
}

func ShareKey(token string) string {
	return shareKeyPrefix + token
}

// Get returns ErrMiss when the token is not cached
func (c *ShareCache) Get(ctx context.Context, token string) (*domain.StoredReport, error) {
	if c == nil {
		return nil, ErrMiss
	}
	raw, err := c.kv.Get(ctx, ShareKey(token))
	if err != nil {
		return nil, err
	}
	var report domain.StoredReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		// corrupt entry, drop it
		_ = c.kv.Del(ctx, ShareKey(token))
		return nil, ErrMiss
	}
	return &report, nil
}

func (c *ShareCache) Put(ctx context.Context, report *domain.StoredReport) error {
	if c == nil || report == nil || report.ShareToken == nil {
		return nil
	}
	b, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode shared report: %w", err)
	}
	return c.kv.Set(ctx, ShareKey(*report.ShareToken), string(b), c.ttl)
}

func (c *ShareCache) Evict(ctx context.Context, token string) error {
	if c == nil || token == "" {
		return nil
	}
	return c.kv.Del(ctx, ShareKey(token))
}

// IsMiss true for ErrMiss
func IsMiss(err error) bool {
	return errors.Is(err, ErrMiss)
}
