package repository

import (
	"context"

	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
)

// MovementLedger libro de movimientos de solo inserción. Append asigna el ID.
type MovementLedger interface {
	Append(ctx context.Context, movement *entity.Movement) error
}

// MovementReader consultas de solo lectura sobre movimientos confirmados.
// Los listados se ordenan por fecha descendente y, a igual fecha, por ID descendente.
type MovementReader interface {
	GetByID(ctx context.Context, id int64) (*entity.MovementRecord, error)
	List(ctx context.Context, filter entity.MovementFilter) ([]*entity.MovementRecord, error)
	// Count cuenta los movimientos que cumplen el filtro, ignorando Limit y Offset.
	Count(ctx context.Context, filter entity.MovementFilter) (int, error)
	Totals(ctx context.Context, productID int64) (entity.LedgerTotals, error)
}
