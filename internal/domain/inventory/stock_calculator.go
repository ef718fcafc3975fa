package inventory

import (
	"math"

	"github.com/ManoGuzman/inventory-system/internal/domain"
	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
)

// NextQuantity calcula la existencia resultante de aplicar un movimiento (servicio de dominio).
// Una salida mayor a la existencia se rechaza con *domain.InsufficientStockError; nunca se trunca a cero.
func NextQuantity(productID, current int64, movType entity.MovementType, quantity int64) (int64, error) {
	if quantity <= 0 || current < 0 {
		return 0, domain.ErrInvalidInput
	}
	switch movType {
	case entity.MovementTypeIN:
		if quantity > math.MaxInt64-current {
			return 0, domain.ErrInvalidInput
		}
		return current + quantity, nil
	case entity.MovementTypeOUT:
		if quantity > current {
			return 0, &domain.InsufficientStockError{ProductID: productID, Requested: quantity, Available: current}
		}
		return current - quantity, nil
	}
	return 0, domain.ErrInvalidInput
}

// ExpectedQuantity existencia que el libro justifica: inicial + entradas - salidas.
func ExpectedQuantity(opening int64, totals entity.LedgerTotals) int64 {
	return opening + totals.In - totals.Out
}
