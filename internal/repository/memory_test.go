package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zapys/internal/models"
)

func TestMemoryStateRoundTrip(t *testing.T) {
	repo := NewMemoryStateRepository(time.Minute)
	ctx := context.Background()

	state := &models.UserState{UserID: 1, Flow: models.FlowChange, CurrentStep: models.StepAwaitingChangeID}
	require.NoError(t, repo.SetState(ctx, state))

	got, err := repo.GetState(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.FlowChange, got.Flow)

	require.NoError(t, repo.ClearState(ctx, 1))
	got, err = repo.GetState(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryCheckRateLimit(t *testing.T) {
	repo := NewMemoryStateRepository(time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := repo.CheckRateLimit(ctx, 1, 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := repo.CheckRateLimit(ctx, 1, 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// другой пользователь не затронут
	allowed, err = repo.CheckRateLimit(ctx, 2, 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}
