package cache

import (
	"context"
	"sync/atomic"
	"time"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/models"

	"github.com/rs/zerolog"
)

// FailoverSummaryCache serves from the primary cache until it fails, then
// switches to the fallback and probes the primary again after a minute.
type FailoverSummaryCache struct {
	primary   domain.SummaryCache
	fallback  domain.SummaryCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverSummaryCache(primary, fallback domain.SummaryCache, logger *zerolog.Logger) *FailoverSummaryCache {
	return &FailoverSummaryCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Degraded reports whether the primary cache is currently bypassed.
func (c *FailoverSummaryCache) Degraded() bool {
	return c.isDown.Load()
}

func (c *FailoverSummaryCache) Get(ctx context.Context) (*models.DashboardSummary, error) {
	if !c.isDown.Load() {
		summary, err := c.primary.Get(ctx)
		if err == nil {
			return summary, nil
		}
		c.logger.Error().Err(err).Msg("Primary summary cache failed, falling back to memory")
		c.isDown.Store(true)
		c.lastCheck = time.Now()
	}

	// Try to recover after 1 minute
	if c.isDown.Load() && time.Since(c.lastCheck) > time.Minute {
		summary, err := c.primary.Get(ctx)
		if err == nil {
			c.isDown.Store(false)
			return summary, nil
		}
		c.lastCheck = time.Now()
	}

	return c.fallback.Get(ctx)
}

func (c *FailoverSummaryCache) Set(ctx context.Context, summary *models.DashboardSummary) error {
	if !c.isDown.Load() {
		err := c.primary.Set(ctx, summary)
		if err == nil {
			return nil
		}
		c.logger.Error().Err(err).Msg("Primary summary cache failed, falling back to memory")
		c.isDown.Store(true)
		c.lastCheck = time.Now()
	}

	return c.fallback.Set(ctx, summary)
}

func (c *FailoverSummaryCache) Invalidate(ctx context.Context) error {
	if !c.isDown.Load() {
		err := c.primary.Invalidate(ctx)
		if err == nil {
			// Keep the fallback honest too; a stale copy there would
			// resurface after a failover.
			return c.fallback.Invalidate(ctx)
		}
		c.logger.Error().Err(err).Msg("Primary summary cache failed, falling back to memory")
		c.isDown.Store(true)
		c.lastCheck = time.Now()
	}

	return c.fallback.Invalidate(ctx)
}
