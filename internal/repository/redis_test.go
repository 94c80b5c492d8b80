package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zapys/internal/models"
)

func setupRedisRepo(t *testing.T) (*RedisStateRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStateRepository(client, time.Minute), mr
}

func TestRedisStateRoundTrip(t *testing.T) {
	repo, _ := setupRedisRepo(t)
	ctx := context.Background()

	state := &models.UserState{
		UserID:      42,
		Flow:        models.FlowCreate,
		CurrentStep: models.StepAwaitingDate,
	}
	state.Set(models.FieldDate, "2024-01-05")
	state.Set(models.FieldTargetID, int64(7))

	require.NoError(t, repo.SetState(ctx, state))

	got, err := repo.GetState(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.FlowCreate, got.Flow)
	assert.Equal(t, models.StepAwaitingDate, got.CurrentStep)
	assert.Equal(t, "2024-01-05", got.GetString(models.FieldDate))
	// JSON кодирует числа как float64, GetInt64 это учитывает
	assert.Equal(t, int64(7), got.GetInt64(models.FieldTargetID))
}

func TestRedisStateMissing(t *testing.T) {
	repo, _ := setupRedisRepo(t)

	got, err := repo.GetState(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisClearState(t *testing.T) {
	repo, _ := setupRedisRepo(t)
	ctx := context.Background()

	state := &models.UserState{UserID: 42, Flow: models.FlowCancel, CurrentStep: models.StepAwaitingCancelID}
	require.NoError(t, repo.SetState(ctx, state))
	require.NoError(t, repo.ClearState(ctx, 42))

	got, err := repo.GetState(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStateTTL(t *testing.T) {
	repo, mr := setupRedisRepo(t)
	ctx := context.Background()

	state := &models.UserState{UserID: 42, Flow: models.FlowCreate, CurrentStep: models.StepAwaitingDate}
	require.NoError(t, repo.SetState(ctx, state))

	mr.FastForward(2 * time.Minute)

	got, err := repo.GetState(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCheckRateLimit(t *testing.T) {
	repo, mr := setupRedisRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := repo.CheckRateLimit(ctx, 42, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := repo.CheckRateLimit(ctx, 42, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// после истечения окна счетчик сбрасывается
	mr.FastForward(2 * time.Minute)
	allowed, err = repo.CheckRateLimit(ctx, 42, 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}
