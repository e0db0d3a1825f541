package cache

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"shutterdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context) (*models.DashboardSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardSummary), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, summary *models.DashboardSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestFailoverSummaryCache(t *testing.T) {
	primary := new(mockCache)
	fallback := new(mockCache)
	logger := zerolog.New(io.Discard)
	cache := NewFailoverSummaryCache(primary, fallback, &logger)
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		summary := &models.DashboardSummary{TotalClients: 1}
		primary.On("Get", ctx).Return(summary, nil).Once()

		got, err := cache.Get(ctx)
		assert.NoError(t, err)
		assert.Equal(t, summary, got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		summary := &models.DashboardSummary{TotalClients: 2}
		primary.On("Get", ctx).Return(nil, errors.New("fail")).Once()
		fallback.On("Get", ctx).Return(summary, nil).Once()

		got, err := cache.Get(ctx)
		assert.NoError(t, err)
		assert.Equal(t, summary, got)
		assert.True(t, cache.Degraded())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		cache.isDown.Store(true)
		cache.lastCheck = time.Now().Add(-2 * time.Minute)

		summary := &models.DashboardSummary{TotalClients: 3}
		primary.On("Get", ctx).Return(summary, nil).Once()

		got, err := cache.Get(ctx)
		assert.NoError(t, err)
		assert.Equal(t, summary, got)
		assert.False(t, cache.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("RecoveryAttemptFail", func(t *testing.T) {
		cache.isDown.Store(true)
		cache.lastCheck = time.Now().Add(-2 * time.Minute)

		primary.On("Get", ctx).Return(nil, errors.New("still fail")).Once()
		fallback.On("Get", ctx).Return(nil, nil).Once()

		_, err := cache.Get(ctx)
		assert.NoError(t, err)
		assert.True(t, cache.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("SetSuccess", func(t *testing.T) {
		cache.isDown.Store(false)
		summary := &models.DashboardSummary{TotalClients: 4}
		primary.On("Set", ctx, summary).Return(nil).Once()

		err := cache.Set(ctx, summary)
		assert.NoError(t, err)
		primary.AssertExpectations(t)
	})

	t.Run("SetFailover", func(t *testing.T) {
		cache.isDown.Store(false)
		summary := &models.DashboardSummary{TotalClients: 5}
		primary.On("Set", ctx, summary).Return(errors.New("fail")).Once()
		fallback.On("Set", ctx, summary).Return(nil).Once()

		err := cache.Set(ctx, summary)
		assert.NoError(t, err)
		assert.True(t, cache.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("InvalidateHitsBoth", func(t *testing.T) {
		cache.isDown.Store(false)
		primary.On("Invalidate", ctx).Return(nil).Once()
		fallback.On("Invalidate", ctx).Return(nil).Once()

		err := cache.Invalidate(ctx)
		assert.NoError(t, err)
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("InvalidateFailover", func(t *testing.T) {
		cache.isDown.Store(false)
		primary.On("Invalidate", ctx).Return(errors.New("fail")).Once()
		fallback.On("Invalidate", ctx).Return(nil).Once()

		err := cache.Invalidate(ctx)
		assert.NoError(t, err)
		assert.True(t, cache.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("SetAlreadyDown", func(t *testing.T) {
		cache.isDown.Store(true)
		cache.lastCheck = time.Now()
		summary := &models.DashboardSummary{TotalClients: 6}
		fallback.On("Set", ctx, summary).Return(nil).Once()

		err := cache.Set(ctx, summary)
		assert.NoError(t, err)
		fallback.AssertExpectations(t)
	})
}
