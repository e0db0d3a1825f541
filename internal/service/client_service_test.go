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

func TestClientService_Create(t *testing.T) {
	repo := new(mockRepo)
	cache := new(mockSummaryCache)
	logger := zerolog.Nop()
	svc := NewClientService(repo, cache, &logger)

	client := &models.Client{Name: "Anna Petrova", Phone: "+7 900 555-12-34"}
	repo.On("CreateClient", mock.Anything, client).Return(nil).Once()
	cache.On("Invalidate", mock.Anything).Return(nil).Once()

	err := svc.Create(context.Background(), client)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestClientService_CreateEmptyName(t *testing.T) {
	repo := new(mockRepo)
	logger := zerolog.Nop()
	svc := NewClientService(repo, nil, &logger)

	err := svc.Create(context.Background(), &models.Client{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)
	repo.AssertNotCalled(t, "CreateClient", mock.Anything, mock.Anything)
}

func TestClientService_UpdateEmptyName(t *testing.T) {
	repo := new(mockRepo)
	logger := zerolog.Nop()
	svc := NewClientService(repo, nil, &logger)

	err := svc.Update(context.Background(), &models.Client{ID: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)
	repo.AssertNotCalled(t, "UpdateClient", mock.Anything, mock.Anything)
}

func TestClientService_Delete(t *testing.T) {
	repo := new(mockRepo)
	cache := new(mockSummaryCache)
	logger := zerolog.Nop()
	svc := NewClientService(repo, cache, &logger)

	repo.On("DeleteClient", mock.Anything, int64(3)).Return(nil).Once()
	cache.On("Invalidate", mock.Anything).Return(nil).Once()

	err := svc.Delete(context.Background(), 3)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestClientService_DeleteWithProjects(t *testing.T) {
	repo := new(mockRepo)
	cache := new(mockSummaryCache)
	logger := zerolog.Nop()
	svc := NewClientService(repo, cache, &logger)

	repo.On("DeleteClient", mock.Anything, int64(3)).Return(domain.ErrConsistency).Once()

	err := svc.Delete(context.Background(), 3)
	assert.ErrorIs(t, err, domain.ErrConsistency)
	cache.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestClientService_List(t *testing.T) {
	repo := new(mockRepo)
	logger := zerolog.Nop()
	svc := NewClientService(repo, nil, &logger)

	clients := []*models.Client{{ID: 1, Name: "Anna"}, {ID: 2, Name: "Boris"}}
	repo.On("ListClients", mock.Anything).Return(clients, nil).Once()

	got, err := svc.List(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, clients, got)
	repo.AssertExpectations(t)
}
