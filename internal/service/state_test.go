package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"zapys/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockStateRepo struct {
	mock.Mock
}

func (m *mockStateRepo) GetState(ctx context.Context, userID int64) (*models.UserState, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserState), args.Error(1)
}

func (m *mockStateRepo) SetState(ctx context.Context, state *models.UserState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *mockStateRepo) ClearState(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockStateRepo) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, userID, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestStateService_Get(t *testing.T) {
	mockRepo := new(mockStateRepo)
	logger := zerolog.Nop()
	s := NewStateService(mockRepo, 0, 0, &logger)
	ctx := context.Background()
	userID := int64(123)

	t.Run("Success", func(t *testing.T) {
		expectedState := &models.UserState{UserID: userID, Flow: models.FlowCreate, CurrentStep: models.StepAwaitingDate}
		mockRepo.On("GetState", ctx, userID).Return(expectedState, nil).Once()

		state, err := s.Get(ctx, userID)
		assert.NoError(t, err)
		assert.Equal(t, expectedState, state)
	})

	t.Run("Error", func(t *testing.T) {
		mockRepo.On("GetState", ctx, userID).Return(nil, errors.New("db error")).Once()

		state, err := s.Get(ctx, userID)
		assert.Error(t, err)
		assert.Nil(t, state)
	})
}

func TestStateService_BeginReplacesSession(t *testing.T) {
	mockRepo := new(mockStateRepo)
	logger := zerolog.Nop()
	s := NewStateService(mockRepo, 0, 0, &logger)
	ctx := context.Background()
	userID := int64(123)

	// Begin всегда пишет новое состояние, не читая старое
	mockRepo.On("SetState", ctx, mock.MatchedBy(func(state *models.UserState) bool {
		return state.UserID == userID &&
			state.Flow == models.FlowChange &&
			state.CurrentStep == models.StepAwaitingChangeID &&
			len(state.TempData) == 0
	})).Return(nil).Once()

	state, err := s.Begin(ctx, userID, models.FlowChange, models.StepAwaitingChangeID)
	assert.NoError(t, err)
	assert.NotNil(t, state)
	mockRepo.AssertNotCalled(t, "GetState")
	mockRepo.AssertExpectations(t)
}

func TestStateService_Advance(t *testing.T) {
	mockRepo := new(mockStateRepo)
	logger := zerolog.Nop()
	s := NewStateService(mockRepo, 0, 0, &logger)
	ctx := context.Background()

	state := &models.UserState{UserID: 123, Flow: models.FlowCreate, CurrentStep: models.StepAwaitingDate}
	state.Set(models.FieldDate, "2024-01-05")

	mockRepo.On("SetState", ctx, mock.MatchedBy(func(saved *models.UserState) bool {
		return saved.CurrentStep == models.StepAwaitingTime &&
			saved.GetString(models.FieldDate) == "2024-01-05"
	})).Return(nil).Once()

	err := s.Advance(ctx, state, models.StepAwaitingTime)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestStateService_Clear(t *testing.T) {
	mockRepo := new(mockStateRepo)
	logger := zerolog.Nop()
	s := NewStateService(mockRepo, 0, 0, &logger)
	ctx := context.Background()

	mockRepo.On("ClearState", ctx, int64(123)).Return(nil).Once()

	assert.NoError(t, s.Clear(ctx, 123))
	mockRepo.AssertExpectations(t)
}

func TestStateService_CheckRateLimit(t *testing.T) {
	mockRepo := new(mockStateRepo)
	logger := zerolog.Nop()
	s := NewStateService(mockRepo, 5, 60, &logger)
	ctx := context.Background()
	userID := int64(123)

	t.Run("Allowed", func(t *testing.T) {
		mockRepo.On("CheckRateLimit", ctx, userID, 5, time.Minute).Return(true, nil).Once()
		allowed, err := s.CheckRateLimit(ctx, userID)
		assert.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("Exceeded", func(t *testing.T) {
		mockRepo.On("CheckRateLimit", ctx, userID, 5, time.Minute).Return(false, nil).Once()
		allowed, err := s.CheckRateLimit(ctx, userID)
		assert.NoError(t, err)
		assert.False(t, allowed)
	})
}

func TestStateService_Defaults(t *testing.T) {
	mockRepo := new(mockStateRepo)
	logger := zerolog.Nop()
	s := NewStateService(mockRepo, 0, 0, &logger)
	ctx := context.Background()

	mockRepo.On("CheckRateLimit", ctx, int64(1), models.RateLimitMessages, time.Duration(models.RateLimitWindow)*time.Second).
		Return(true, nil).Once()

	allowed, err := s.CheckRateLimit(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, allowed)
	mockRepo.AssertExpectations(t)
}
