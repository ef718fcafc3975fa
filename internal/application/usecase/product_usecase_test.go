package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManoGuzman/inventory-system/internal/application/dto"
	"github.com/ManoGuzman/inventory-system/internal/application/inventory"
	"github.com/ManoGuzman/inventory-system/internal/application/usecase"
	"github.com/ManoGuzman/inventory-system/internal/domain"
	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/internal/infrastructure/memory"
)

func strPtr(s string) *string { return &s }

func TestProductUseCase_CreateYGet(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewProductRepository(memory.NewStore()))
	ctx := context.Background()

	p, err := uc.Create(ctx, dto.CreateProductRequest{Code: " ELEC001 ", Name: "Laptop Dell", Category: "Electronics", Location: "Warehouse A-1", Quantity: 10})
	require.NoError(t, err)
	assert.Equal(t, "ELEC001", p.Code)
	assert.Equal(t, int64(10), p.Quantity)
	assert.Equal(t, int64(10), p.OpeningQuantity)

	byCode, err := uc.GetByCode(ctx, "ELEC001")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byCode.ID)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Code: "ELEC001", Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.GetByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUseCase_CreateInvalido(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewProductRepository(memory.NewStore()))
	for name, in := range map[string]dto.CreateProductRequest{
		"sin código":          {Name: "x"},
		"sin nombre":          {Code: "x", Name: "  "},
		"existencia negativa": {Code: "x", Name: "x", Quantity: -1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Create(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestProductUseCase_UpdateNoCambiaExistencia(t *testing.T) {
	s := memory.NewStore()
	uc := usecase.NewProductUseCase(memory.NewProductRepository(s))
	ctx := context.Background()
	p, err := uc.Create(ctx, dto.CreateProductRequest{Code: "FURN001", Name: "Office Chair", Quantity: 25})
	require.NoError(t, err)

	engine := inventory.NewApplyMovementUseCase(memory.NewTxRunner(s), inventory.EngineConfig{}, nil)
	_, err = engine.Apply(ctx, inventory.ApplyMovementInput{ProductID: p.ID, Type: entity.MovementTypeOUT, Quantity: 5})
	require.NoError(t, err)

	updated, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{Name: strPtr("Silla de oficina"), Location: strPtr("B-2")})
	require.NoError(t, err)
	assert.Equal(t, "Silla de oficina", updated.Name)
	assert.Equal(t, "B-2", updated.Location)
	assert.Equal(t, int64(20), updated.Quantity)

	_, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{Name: strPtr("")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.ErrorIs(t, uc.Delete(ctx, p.ID), domain.ErrConflict, "con historial no se elimina")
}

func TestProductUseCase_ListYCategorias(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewProductRepository(memory.NewStore()))
	ctx := context.Background()
	for _, in := range []dto.CreateProductRequest{
		{Code: "ELEC001", Name: "Laptop Dell", Category: "Electronics", Location: "Warehouse A-1"},
		{Code: "FURN001", Name: "Office Chair", Category: "Furniture", Location: "Warehouse B-1"},
		{Code: "STAT001", Name: "Paper A4", Category: "Stationery", Location: "Warehouse A-2"},
	} {
		_, err := uc.Create(ctx, in)
		require.NoError(t, err)
	}

	list, err := uc.List(ctx, "", "warehouse a", dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Page.Total)

	list, err = uc.List(ctx, "Furniture", "", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "FURN001", list.Items[0].Code)

	cats, err := uc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Electronics", "Furniture", "Stationery"}, cats)
}
