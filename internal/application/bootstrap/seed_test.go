package bootstrap_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManoGuzman/inventory-system/internal/application/bootstrap"
	"github.com/ManoGuzman/inventory-system/internal/domain"
	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/internal/infrastructure/memory"
)

func TestSeed_CreaAdminYCatalogo(t *testing.T) {
	s := memory.NewStore()
	users := memory.NewUserRepository(s)
	products := memory.NewProductRepository(s)
	ctx := context.Background()
	opts := bootstrap.Options{AdminUsername: "admin", AdminPassword: "admin123"}

	res, err := bootstrap.Seed(ctx, users, products, opts, nil)
	require.NoError(t, err)
	assert.True(t, res.AdminCreated)
	assert.Equal(t, len(bootstrap.SampleProducts()), res.ProductsCreated)

	admin, err := users.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, admin.Role)
	assert.True(t, admin.IsActive)

	laptop, err := products.GetByCode(ctx, "ELEC001")
	require.NoError(t, err)
	assert.Equal(t, int64(10), laptop.Quantity)
	assert.Equal(t, int64(10), laptop.OpeningQuantity)

	again, err := bootstrap.Seed(ctx, users, products, opts, nil)
	require.NoError(t, err, "repetir el seed omite lo existente")
	assert.False(t, again.AdminCreated)
	assert.Zero(t, again.ProductsCreated)
}

func TestSeed_CatalogoPropio(t *testing.T) {
	s := memory.NewStore()
	res, err := bootstrap.Seed(context.Background(), memory.NewUserRepository(s), memory.NewProductRepository(s), bootstrap.Options{
		AdminUsername: "root",
		AdminPassword: "secreto1",
		Products:      []entity.Product{{Code: "X1", Name: "Uno", OpeningQuantity: 1}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ProductsCreated)
}

func TestSeed_PasswordCorta(t *testing.T) {
	s := memory.NewStore()
	_, err := bootstrap.Seed(context.Background(), memory.NewUserRepository(s), memory.NewProductRepository(s),
		bootstrap.Options{AdminUsername: "admin", AdminPassword: "123"}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
