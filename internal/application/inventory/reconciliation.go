package inventory

import (
	"context"

	"github.com/ManoGuzman/inventory-system/internal/application/dto"
	"github.com/ManoGuzman/inventory-system/internal/domain"
	"github.com/ManoGuzman/inventory-system/internal/domain/inventory"
	"github.com/ManoGuzman/inventory-system/internal/domain/repository"
)

const reconcileAttempts = 5

// ReconciliationUseCase verifica que la existencia guardada coincida con la que justifica el libro.
type ReconciliationUseCase struct {
	products repository.ProductRepository
	reader   repository.MovementReader
}

// NewReconciliationUseCase construye el caso de uso.
func NewReconciliationUseCase(products repository.ProductRepository, reader repository.MovementReader) *ReconciliationUseCase {
	return &ReconciliationUseCase{products: products, reader: reader}
}

// Verify compara existencia actual con inicial + entradas - salidas.
// La lectura no bloquea: se repite si el producto cambió de versión entre la lectura del
// producto y la de los totales, de modo que ambos correspondan al mismo commit.
func (uc *ReconciliationUseCase) Verify(ctx context.Context, productID int64) (*dto.ReconciliationResponse, error) {
	if productID <= 0 {
		return nil, domain.ErrNotFound
	}
	for attempt := 0; attempt < reconcileAttempts; attempt++ {
		before, err := uc.products.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		totals, err := uc.reader.Totals(ctx, productID)
		if err != nil {
			return nil, err
		}
		after, err := uc.products.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if before.Version != after.Version {
			continue
		}
		expected := inventory.ExpectedQuantity(after.OpeningQuantity, totals)
		return &dto.ReconciliationResponse{
			ProductID:        after.ID,
			ProductCode:      after.Code,
			OpeningQuantity:  after.OpeningQuantity,
			TotalIn:          totals.In,
			TotalOut:         totals.Out,
			MovementCount:    totals.Count,
			ExpectedQuantity: expected,
			ActualQuantity:   after.Quantity,
			Consistent:       expected == after.Quantity && after.Quantity >= 0,
		}, nil
	}
	return nil, domain.ErrConflict
}
