package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManoGuzman/inventory-system/internal/domain"
)

func TestInsufficientStockError_EsErrInsufficientStock(t *testing.T) {
	err := fmt.Errorf("aplicar movimiento: %w", &domain.InsufficientStockError{ProductID: 7, Requested: 20, Available: 15})

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var detail *domain.InsufficientStockError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, int64(20), detail.Requested)
	assert.Equal(t, int64(15), detail.Available)
	assert.Contains(t, err.Error(), "solicitado 20, disponible 15")
}

func TestStorageFailure_ConservaCausa(t *testing.T) {
	cause := errors.New("connection refused")
	err := domain.StorageFailure("insert movement", cause)

	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, domain.ErrConflict)
}
