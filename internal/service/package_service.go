package service

import (
	"context"
	"fmt"
	"strings"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/models"

	"github.com/rs/zerolog"
)

type PackageService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewPackageService(repo domain.Repository, logger *zerolog.Logger) *PackageService {
	return &PackageService{
		repo:   repo,
		logger: logger,
	}
}

func (s *PackageService) validate(pkg *models.Package) error {
	if strings.TrimSpace(pkg.Name) == "" {
		return fmt.Errorf("package name is required: %w", domain.ErrValidation)
	}
	if pkg.Price < 0 {
		return fmt.Errorf("package price must not be negative: %w", domain.ErrValidation)
	}
	if pkg.Hours < 0 {
		return fmt.Errorf("package hours must not be negative: %w", domain.ErrValidation)
	}
	return nil
}

func (s *PackageService) Create(ctx context.Context, pkg *models.Package) error {
	if err := s.validate(pkg); err != nil {
		return err
	}
	return s.repo.CreatePackage(ctx, pkg)
}

func (s *PackageService) Get(ctx context.Context, id int64) (*models.Package, error) {
	return s.repo.GetPackage(ctx, id)
}

func (s *PackageService) List(ctx context.Context) ([]*models.Package, error) {
	return s.repo.ListPackages(ctx)
}

// Update reprices the catalog entry. Existing projects are not touched; they
// carry the price they were created with.
func (s *PackageService) Update(ctx context.Context, pkg *models.Package) error {
	if err := s.validate(pkg); err != nil {
		return err
	}
	return s.repo.UpdatePackage(ctx, pkg)
}

func (s *PackageService) Delete(ctx context.Context, id int64) error {
	return s.repo.DeletePackage(ctx, id)
}
