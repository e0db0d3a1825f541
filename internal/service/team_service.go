package service

import (
	"context"
	"fmt"
	"strings"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/models"

	"github.com/rs/zerolog"
)

type TeamService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewTeamService(repo domain.Repository, logger *zerolog.Logger) *TeamService {
	return &TeamService{
		repo:   repo,
		logger: logger,
	}
}

func (s *TeamService) Create(ctx context.Context, member *models.TeamMember) error {
	if strings.TrimSpace(member.Name) == "" {
		return fmt.Errorf("team member name is required: %w", domain.ErrValidation)
	}
	return s.repo.CreateTeamMember(ctx, member)
}

func (s *TeamService) Get(ctx context.Context, id int64) (*models.TeamMember, error) {
	return s.repo.GetTeamMember(ctx, id)
}

func (s *TeamService) List(ctx context.Context) ([]*models.TeamMember, error) {
	return s.repo.ListTeamMembers(ctx)
}

func (s *TeamService) Update(ctx context.Context, member *models.TeamMember) error {
	if strings.TrimSpace(member.Name) == "" {
		return fmt.Errorf("team member name is required: %w", domain.ErrValidation)
	}
	return s.repo.UpdateTeamMember(ctx, member)
}

func (s *TeamService) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteTeamMember(ctx, id)
}
