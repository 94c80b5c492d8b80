package service

import (
	"context"
	"time"

	"zapys/internal/domain"
	"zapys/internal/models"

	"github.com/rs/zerolog"
)

type StateService struct {
	stateRepo         domain.StateRepository
	rateLimitMessages int
	rateLimitWindow   time.Duration
	logger            *zerolog.Logger
}

func NewStateService(stateRepo domain.StateRepository, rateLimitMessages, rateLimitWindowSeconds int, logger *zerolog.Logger) *StateService {
	if rateLimitMessages <= 0 {
		rateLimitMessages = models.RateLimitMessages
	}
	if rateLimitWindowSeconds <= 0 {
		rateLimitWindowSeconds = models.RateLimitWindow
	}
	return &StateService{
		stateRepo:         stateRepo,
		rateLimitMessages: rateLimitMessages,
		rateLimitWindow:   time.Duration(rateLimitWindowSeconds) * time.Second,
		logger:            logger,
	}
}

func (s *StateService) Get(ctx context.Context, userID int64) (*models.UserState, error) {
	state, err := s.stateRepo.GetState(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to get user state")
		return nil, err
	}
	return state, nil
}

// Begin starts a fresh dialogue flow, replacing any previous session.
func (s *StateService) Begin(ctx context.Context, userID int64, flow, step string) (*models.UserState, error) {
	state := &models.UserState{
		UserID:      userID,
		Flow:        flow,
		CurrentStep: step,
		TempData:    make(map[string]interface{}),
	}
	if err := s.stateRepo.SetState(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Advance moves the dialogue to the next step, persisting collected data.
func (s *StateService) Advance(ctx context.Context, state *models.UserState, step string) error {
	state.CurrentStep = step
	return s.stateRepo.SetState(ctx, state)
}

func (s *StateService) Clear(ctx context.Context, userID int64) error {
	return s.stateRepo.ClearState(ctx, userID)
}

func (s *StateService) CheckRateLimit(ctx context.Context, userID int64) (bool, error) {
	return s.stateRepo.CheckRateLimit(ctx, userID, s.rateLimitMessages, s.rateLimitWindow)
}
