package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManoGuzman/inventory-system/internal/application/dto"
	"github.com/ManoGuzman/inventory-system/internal/application/inventory"
	"github.com/ManoGuzman/inventory-system/internal/domain"
	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
)

func dtoRequest(productID int64, movType string, qty int64) dto.ApplyMovementRequest {
	return dto.ApplyMovementRequest{ProductID: productID, Type: movType, Quantity: qty}
}

func (f *fixture) applyAt(t *testing.T, productID int64, movType entity.MovementType, qty int64, at time.Time) *entity.MovementRecord {
	t.Helper()
	rec, err := f.engine.Apply(context.Background(), inventory.ApplyMovementInput{ProductID: productID, Type: movType, Quantity: qty, Timestamp: at})
	require.NoError(t, err)
	return rec
}

func TestMovementQuery_OrdenYFiltros(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 100)
	b := f.product(t, "B", 100)
	day := func(d int) time.Time { return time.Date(2026, 5, d, 10, 0, 0, 0, time.UTC) }

	f.applyAt(t, a.ID, entity.MovementTypeIN, 1, day(1))
	f.applyAt(t, a.ID, entity.MovementTypeOUT, 2, day(3))
	f.applyAt(t, b.ID, entity.MovementTypeOUT, 3, day(2))
	same1 := f.applyAt(t, b.ID, entity.MovementTypeIN, 4, day(3))

	q := inventory.NewMovementQueryUseCase(f.reader)
	ctx := context.Background()

	all, err := q.ListAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, all.Total)
	assert.Equal(t, same1.ID, all.Items[0].ID, "misma fecha: ID mayor primero")
	assert.Equal(t, int64(1), all.Items[3].Quantity)

	forA, err := q.ListForProduct(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, forA.Total)

	outs, err := q.ListByType(ctx, entity.MovementTypeOUT)
	require.NoError(t, err)
	assert.Equal(t, 2, outs.Total)
	for _, m := range outs.Items {
		assert.Equal(t, "OUT", m.Type)
	}

	rng, err := q.ListByDateRange(ctx, day(2), day(3))
	require.NoError(t, err)
	assert.Equal(t, 3, rng.Total, "rango inclusivo")

	limit := 1
	movType := entity.MovementTypeIN
	page, err := q.Search(ctx, entity.MovementFilter{Type: &movType, Limit: limit})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Total, "el total cuenta todas las coincidencias")
	assert.Equal(t, same1.ID, page.Items[0].ID)

	next, err := q.Search(ctx, entity.MovementFilter{Type: &movType, Limit: limit, Offset: 1})
	require.NoError(t, err)
	require.Len(t, next.Items, 1)
	assert.Equal(t, 2, next.Total)
	assert.NotEqual(t, same1.ID, next.Items[0].ID)
}

func TestMovementQuery_Validaciones(t *testing.T) {
	f := newFixture(t)
	q := inventory.NewMovementQueryUseCase(f.reader)
	ctx := context.Background()
	now := time.Now()

	_, err := q.ListByDateRange(ctx, now, now.Add(-time.Hour))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = q.ListByType(ctx, "TRANSFER")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = q.Search(ctx, entity.MovementFilter{Offset: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = q.GetMovement(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = q.GetMovement(ctx, 77)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	empty, err := q.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.NotNil(t, empty.Items)
}

func TestMovementQuery_GetMovement(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "ELEC001", 10)
	rec := f.applyAt(t, p.ID, entity.MovementTypeOUT, 2, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	got, err := inventory.NewMovementQueryUseCase(f.reader).GetMovement(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "ELEC001", got.ProductCode)
	assert.Equal(t, int64(2), got.Quantity)
	assert.True(t, got.Timestamp.Equal(rec.Date))
}
