package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/internal/domain/repository"
	"github.com/ManoGuzman/inventory-system/internal/infrastructure/memory"
)

func TestOutboxRepo_ClaimRespetaLease(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := memory.NewStore(memory.WithClock(func() time.Time { return now }))
	err := memory.NewTxRunner(s).Run(context.Background(), func(ctx context.Context, _ repository.ProductStore, _ repository.MovementLedger, outbox repository.OutboxWriter) error {
		for _, id := range []string{"a", "b"} {
			if err := outbox.Enqueue(ctx, &entity.OutboxMessage{ID: id, EventType: entity.EventMovementApplied}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	repo := memory.NewOutboxRepository(s)

	first, err := repo.Claim(context.Background(), 1, time.Minute)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "a", first[0].ID)

	second, err := repo.Claim(context.Background(), 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, second, 1, "a sigue reservado")
	assert.Equal(t, "b", second[0].ID)

	require.NoError(t, repo.MarkPublished(context.Background(), "a"))
	retry := now.Add(-time.Second)
	require.NoError(t, repo.MarkFailed(context.Background(), "b", "broker caído", &retry))
	assert.Equal(t, 1, repo.Pending())

	again, err := repo.Claim(context.Background(), 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, 1, again[0].RetryCount)

	require.NoError(t, repo.MarkFailed(context.Background(), "b", "broker caído", nil))
	assert.Zero(t, repo.Pending())
}
