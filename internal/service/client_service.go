package service

import (
	"context"
	"fmt"
	"strings"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/models"

	"github.com/rs/zerolog"
)

type ClientService struct {
	repo   domain.Repository
	cache  domain.SummaryCache
	logger *zerolog.Logger
}

func NewClientService(repo domain.Repository, cache domain.SummaryCache, logger *zerolog.Logger) *ClientService {
	return &ClientService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (s *ClientService) Create(ctx context.Context, client *models.Client) error {
	if strings.TrimSpace(client.Name) == "" {
		return fmt.Errorf("client name is required: %w", domain.ErrValidation)
	}

	if err := s.repo.CreateClient(ctx, client); err != nil {
		return err
	}

	s.invalidateSummary(ctx)
	return nil
}

func (s *ClientService) Get(ctx context.Context, id int64) (*models.Client, error) {
	return s.repo.GetClient(ctx, id)
}

func (s *ClientService) List(ctx context.Context) ([]*models.Client, error) {
	return s.repo.ListClients(ctx)
}

func (s *ClientService) Update(ctx context.Context, client *models.Client) error {
	if strings.TrimSpace(client.Name) == "" {
		return fmt.Errorf("client name is required: %w", domain.ErrValidation)
	}
	return s.repo.UpdateClient(ctx, client)
}

func (s *ClientService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteClient(ctx, id); err != nil {
		return err
	}

	s.invalidateSummary(ctx)
	return nil
}

func (s *ClientService) invalidateSummary(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Error().Err(err).Msg("summary cache invalidate error")
	}
}
