package repository

import (
	"context"
	"time"

	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
)

// OutboxWriter encola eventos dentro de la transacción del movimiento.
type OutboxWriter interface {
	Enqueue(ctx context.Context, msg *entity.OutboxMessage) error
}

// OutboxReader usado por el relay para publicar mensajes pendientes.
type OutboxReader interface {
	// Claim reserva hasta limit mensajes pendientes durante lease; otro relay no los verá mientras tanto.
	Claim(ctx context.Context, limit int, lease time.Duration) ([]*entity.OutboxMessage, error)
	MarkPublished(ctx context.Context, id string) error
	// MarkFailed registra el error; nextRetry nil marca el mensaje como fallido definitivo.
	MarkFailed(ctx context.Context, id, lastError string, nextRetry *time.Time) error
}
