package cache

import (
	"context"
	"sync"
	"time"

	"shutterdesk/internal/models"
)

type MemorySummaryCache struct {
	mu        sync.RWMutex
	summary   *models.DashboardSummary
	expiresAt time.Time
	ttl       time.Duration
}

func NewMemorySummaryCache(ttl time.Duration) *MemorySummaryCache {
	if ttl <= 0 {
		ttl = models.DashboardCacheTTL * time.Second
	}
	return &MemorySummaryCache{
		ttl: ttl,
	}
}

func (c *MemorySummaryCache) Get(ctx context.Context) (*models.DashboardSummary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.summary == nil || time.Now().After(c.expiresAt) {
		return nil, nil
	}
	return c.summary, nil
}

func (c *MemorySummaryCache) Set(ctx context.Context, summary *models.DashboardSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary = summary
	c.expiresAt = time.Now().Add(c.ttl)
	return nil
}

func (c *MemorySummaryCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary = nil
	return nil
}
