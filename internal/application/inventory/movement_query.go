package inventory

import (
	"context"
	"time"

	"github.com/ManoGuzman/inventory-system/internal/application/dto"
	"github.com/ManoGuzman/inventory-system/internal/domain"
	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/internal/domain/repository"
)

// MovementQueryUseCase consultas de solo lectura sobre el libro de movimientos.
// Todos los listados van del más reciente al más antiguo, desempatando por ID descendente.
type MovementQueryUseCase struct {
	reader repository.MovementReader
}

// NewMovementQueryUseCase construye el caso de uso.
func NewMovementQueryUseCase(reader repository.MovementReader) *MovementQueryUseCase {
	return &MovementQueryUseCase{reader: reader}
}

// GetMovement devuelve un movimiento o domain.ErrNotFound.
func (uc *MovementQueryUseCase) GetMovement(ctx context.Context, id int64) (*dto.MovementResponse, error) {
	if id <= 0 {
		return nil, domain.ErrNotFound
	}
	rec, err := uc.reader.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToMovementResponse(rec)
	return &out, nil
}

// ListForProduct movimientos de un producto.
func (uc *MovementQueryUseCase) ListForProduct(ctx context.Context, productID int64) (*dto.MovementListResponse, error) {
	return uc.list(ctx, entity.MovementFilter{ProductID: &productID})
}

// ListAll todos los movimientos.
func (uc *MovementQueryUseCase) ListAll(ctx context.Context) (*dto.MovementListResponse, error) {
	return uc.list(ctx, entity.MovementFilter{})
}

// ListByDateRange movimientos con fecha en [start, end]. start posterior a end es inválido.
func (uc *MovementQueryUseCase) ListByDateRange(ctx context.Context, start, end time.Time) (*dto.MovementListResponse, error) {
	if start.After(end) {
		return nil, domain.ErrInvalidInput
	}
	return uc.list(ctx, entity.MovementFilter{From: &start, To: &end})
}

// ListByType movimientos de un tipo.
func (uc *MovementQueryUseCase) ListByType(ctx context.Context, movType entity.MovementType) (*dto.MovementListResponse, error) {
	if !movType.Valid() {
		return nil, domain.ErrInvalidInput
	}
	return uc.list(ctx, entity.MovementFilter{Type: &movType})
}

// Search combina filtros opcionales (producto, tipo, rango de fechas) con paginación.
func (uc *MovementQueryUseCase) Search(ctx context.Context, filter entity.MovementFilter) (*dto.MovementListResponse, error) {
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, domain.ErrInvalidInput
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, domain.ErrInvalidInput
	}
	return uc.list(ctx, filter)
}

func (uc *MovementQueryUseCase) list(ctx context.Context, filter entity.MovementFilter) (*dto.MovementListResponse, error) {
	records, err := uc.reader.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := toMovementList(records)
	if filter.Limit > 0 || filter.Offset > 0 {
		if out.Total, err = uc.reader.Count(ctx, filter); err != nil {
			return nil, err
		}
	}
	return out, nil
}
