package service

import (
	"context"
	"testing"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestPackageService_Create(t *testing.T) {
	repo := new(mockRepo)
	logger := zerolog.Nop()
	svc := NewPackageService(repo, &logger)

	pkg := &models.Package{Name: "Wedding Gold", Category: "wedding", Price: 20000, Hours: 8}
	repo.On("CreatePackage", mock.Anything, pkg).Return(nil).Once()

	err := svc.Create(context.Background(), pkg)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestPackageService_Validation(t *testing.T) {
	repo := new(mockRepo)
	logger := zerolog.Nop()
	svc := NewPackageService(repo, &logger)
	ctx := context.Background()

	badPackages := []*models.Package{
		{Name: "", Price: 100},
		{Name: "  ", Price: 100},
		{Name: "Mini", Price: -1},
		{Name: "Mini", Price: 100, Hours: -2},
	}
	for _, pkg := range badPackages {
		assert.ErrorIs(t, svc.Create(ctx, pkg), domain.ErrValidation)
		assert.ErrorIs(t, svc.Update(ctx, pkg), domain.ErrValidation)
	}
	repo.AssertNotCalled(t, "CreatePackage", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdatePackage", mock.Anything, mock.Anything)
}

func TestPackageService_ZeroPriceAllowed(t *testing.T) {
	repo := new(mockRepo)
	logger := zerolog.Nop()
	svc := NewPackageService(repo, &logger)

	pkg := &models.Package{Name: "Promo Shoot", Price: 0}
	repo.On("CreatePackage", mock.Anything, pkg).Return(nil).Once()

	err := svc.Create(context.Background(), pkg)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestPackageService_Update(t *testing.T) {
	repo := new(mockRepo)
	logger := zerolog.Nop()
	svc := NewPackageService(repo, &logger)

	pkg := &models.Package{ID: 2, Name: "Wedding Gold", Price: 25000}
	repo.On("UpdatePackage", mock.Anything, pkg).Return(nil).Once()

	err := svc.Update(context.Background(), pkg)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestPackageService_Delete(t *testing.T) {
	repo := new(mockRepo)
	logger := zerolog.Nop()
	svc := NewPackageService(repo, &logger)

	repo.On("DeletePackage", mock.Anything, int64(2)).Return(nil).Once()

	err := svc.Delete(context.Background(), 2)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
