package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManoGuzman/inventory-system/internal/application/inventory"
	"github.com/ManoGuzman/inventory-system/internal/domain"
	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/internal/infrastructure/postgres"
)

// Requiere una base descartable: INVENTORY_TEST_DATABASE_URL=postgres://...
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("INVENTORY_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("INVENTORY_TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE outbox_messages, inventory_movements, products, users RESTART IDENTITY`)
	require.NoError(t, err)
	return pool
}

func TestPostgres_MotorContraBaseReal(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	products := postgres.NewProductRepository(pool)
	reader := postgres.NewMovementRepository(pool)

	p := &entity.Product{Code: "ELEC001", Name: "Laptop Dell", Category: "Electronics", Location: "Warehouse A-1", OpeningQuantity: 10}
	require.NoError(t, products.Create(ctx, p))
	assert.Equal(t, int64(10), p.Quantity)
	assert.ErrorIs(t, products.Create(ctx, &entity.Product{Code: "ELEC001", Name: "x"}), domain.ErrDuplicate)

	engine := inventory.NewApplyMovementUseCase(postgres.NewTxRunner(pool, time.Second, nil), inventory.EngineConfig{MaxRetries: 3, RetryBackoff: 10 * time.Millisecond}, nil)
	apply := func(movType entity.MovementType, qty int64) error {
		_, err := engine.Apply(ctx, inventory.ApplyMovementInput{ProductID: p.ID, Type: movType, Quantity: qty})
		return err
	}

	require.NoError(t, apply(entity.MovementTypeIN, 5))
	assert.ErrorIs(t, apply(entity.MovementTypeOUT, 20), domain.ErrInsufficientStock)
	require.NoError(t, apply(entity.MovementTypeOUT, 15))

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Quantity)

	list, err := reader.List(ctx, entity.MovementFilter{ProductID: &p.ID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ELEC001", list[0].ProductCode)

	rec, err := inventory.NewReconciliationUseCase(products, reader).Verify(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)

	assert.ErrorIs(t, products.Delete(ctx, p.ID), domain.ErrConflict)
}

func TestPostgres_SalidasConcurrentes(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	p := &entity.Product{Code: "P1", Name: "P1", OpeningQuantity: 10}
	require.NoError(t, postgres.NewProductRepository(pool).Create(ctx, p))
	engine := inventory.NewApplyMovementUseCase(postgres.NewTxRunner(pool, 5*time.Second, nil), inventory.EngineConfig{MaxRetries: 3, RetryBackoff: 10 * time.Millisecond}, nil)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Apply(ctx, inventory.ApplyMovementInput{ProductID: p.ID, Type: entity.MovementTypeOUT, Quantity: 1})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
				return
			}
			if !errors.Is(err, domain.ErrInsufficientStock) {
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, ok)

	got, err := postgres.NewProductRepository(pool).GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Quantity)
}

func TestPostgres_OutboxClaim(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	p := &entity.Product{Code: "P1", Name: "P1", OpeningQuantity: 1}
	require.NoError(t, postgres.NewProductRepository(pool).Create(ctx, p))
	engine := inventory.NewApplyMovementUseCase(postgres.NewTxRunner(pool, time.Second, nil), inventory.EngineConfig{}, nil)
	_, err := engine.Apply(ctx, inventory.ApplyMovementInput{ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: 2})
	require.NoError(t, err)

	outbox := postgres.NewOutboxRepository(pool)
	msgs, err := outbox.Claim(ctx, 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, entity.EventMovementApplied, msgs[0].EventType)

	again, err := outbox.Claim(ctx, 10, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, again)

	require.NoError(t, outbox.MarkPublished(ctx, msgs[0].ID))
}
