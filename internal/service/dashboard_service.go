package service

import (
	"context"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/models"

	"github.com/rs/zerolog"
)

// DashboardService serves the aggregate summary, cache first. Writers
// invalidate the cache, so a hit is never staler than the last mutation.
type DashboardService struct {
	repo   domain.Repository
	cache  domain.SummaryCache
	logger *zerolog.Logger
}

func NewDashboardService(repo domain.Repository, cache domain.SummaryCache, logger *zerolog.Logger) *DashboardService {
	return &DashboardService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	if s.cache != nil {
		summary, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("dashboard cache read error")
		} else if summary != nil {
			return summary, nil
		}
	}

	summary, err := s.repo.GetDashboardSummary(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, summary); err != nil {
			s.logger.Warn().Err(err).Msg("dashboard cache write error")
		}
	}

	return summary, nil
}
