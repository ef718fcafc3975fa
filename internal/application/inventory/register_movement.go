package inventory

import (
	"context"

	"github.com/ManoGuzman/inventory-system/internal/application/dto"
	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
)

// ApplyFromRequest adapta el request HTTP al caso de uso Apply(ctx, ApplyMovementInput).
// La fecha del movimiento la asigna el motor.
func (uc *ApplyMovementUseCase) ApplyFromRequest(ctx context.Context, in dto.ApplyMovementRequest) (*dto.MovementResponse, error) {
	movType, err := entity.ParseMovementType(in.Type)
	if err != nil {
		return nil, err
	}
	rec, err := uc.Apply(ctx, ApplyMovementInput{
		ProductID: in.ProductID,
		Type:      movType,
		Quantity:  in.Quantity,
	})
	if err != nil {
		return nil, err
	}
	out := ToMovementResponse(rec)
	return &out, nil
}

// ToMovementResponse convierte un registro del libro a su DTO.
func ToMovementResponse(r *entity.MovementRecord) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          r.ID,
		ProductID:   r.ProductID,
		ProductCode: r.ProductCode,
		ProductName: r.ProductName,
		Type:        string(r.Type),
		Quantity:    r.Quantity,
		Timestamp:   r.Date,
	}
}

func toMovementList(records []*entity.MovementRecord) *dto.MovementListResponse {
	items := make([]dto.MovementResponse, 0, len(records))
	for _, r := range records {
		items = append(items, ToMovementResponse(r))
	}
	return &dto.MovementListResponse{Items: items, Total: len(items)}
}
