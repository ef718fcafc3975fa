package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManoGuzman/inventory-system/internal/domain"
	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/internal/domain/repository"
)

func TestLockTable_DescartaEntradasSinUso(t *testing.T) {
	locks := newLockTable()
	ctx := context.Background()

	require.NoError(t, locks.acquire(ctx, 1, time.Second))
	assert.Equal(t, 1, locks.size())

	err := locks.acquire(ctx, 1, 10*time.Millisecond)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, locks.size(), "la espera vencida no deja referencias")

	locks.release(1)
	assert.Zero(t, locks.size())

	require.NoError(t, locks.acquire(ctx, 1, time.Second), "el producto se puede volver a bloquear")
	locks.release(1)
	assert.Zero(t, locks.size())
}

func TestLockTable_EsperaConservaLaEntrada(t *testing.T) {
	locks := newLockTable()
	ctx := context.Background()
	require.NoError(t, locks.acquire(ctx, 7, time.Second))

	done := make(chan error, 1)
	go func() { done <- locks.acquire(ctx, 7, time.Second) }()
	require.Eventually(t, func() bool {
		locks.mu.Lock()
		defer locks.mu.Unlock()
		return locks.sems[7].refs == 2
	}, time.Second, time.Millisecond)

	locks.release(7)
	require.NoError(t, <-done)
	assert.Equal(t, 1, locks.size())
	locks.release(7)
	assert.Zero(t, locks.size())
}

func TestStore_DeleteYMovimientosNoRetienenBloqueos(t *testing.T) {
	s := NewStore()
	products := NewProductRepository(s)
	ctx := context.Background()

	p := &entity.Product{Code: "TMP", Name: "Temporal"}
	require.NoError(t, products.Create(ctx, p))
	err := NewTxRunner(s).Run(ctx, func(ctx context.Context, ps repository.ProductStore, _ repository.MovementLedger, _ repository.OutboxWriter) error {
		_, err := ps.GetForUpdate(ctx, p.ID)
		return err
	})
	require.NoError(t, err)
	assert.Zero(t, s.locks.size())

	require.NoError(t, products.Delete(ctx, p.ID))
	assert.Zero(t, s.locks.size(), "un producto eliminado no deja semáforo")
}

func TestOutboxRepo_PublicadosSeDescartan(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	err := NewTxRunner(s).Run(ctx, func(ctx context.Context, _ repository.ProductStore, _ repository.MovementLedger, outbox repository.OutboxWriter) error {
		for _, id := range []string{"a", "b", "c"} {
			if err := outbox.Enqueue(ctx, &entity.OutboxMessage{ID: id, EventType: entity.EventMovementApplied}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	repo := NewOutboxRepository(s)

	require.NoError(t, repo.MarkPublished(ctx, "b"))
	require.NoError(t, repo.MarkPublished(ctx, "a"))
	assert.Len(t, s.outbox, 1)
	assert.Len(t, s.outboxByID, 1)
	assert.ErrorIs(t, repo.MarkPublished(ctx, "a"), domain.ErrNotFound)

	claimed, err := repo.Claim(ctx, 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, "c", claimed[0].ID)
}
