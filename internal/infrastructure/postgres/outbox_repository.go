package postgres

import (
	"context"
	"sort"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/ManoGuzman/inventory-system/internal/domain"
	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/internal/domain/repository"
)

var (
	_ repository.OutboxWriter = (*OutboxRepo)(nil)
	_ repository.OutboxReader = (*OutboxRepo)(nil)
)

const outboxColumns = `id, aggregate_id, event_type, payload, status, retry_count, last_error, next_retry_at, created_at, published_at`

// OutboxRepo bandeja de salida transaccional. Enqueue va en la tx del movimiento;
// Claim y Mark* los usa el relay sobre el pool.
type OutboxRepo struct {
	q Querier
}

// NewOutboxRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

// Enqueue inserta el mensaje como pendiente.
func (r *OutboxRepo) Enqueue(ctx context.Context, msg *entity.OutboxMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	msg.Status = entity.OutboxStatusPending
	_, err := r.q.Exec(ctx, `
		INSERT INTO outbox_messages (id, aggregate_id, event_type, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		msg.ID, msg.AggregateID, msg.EventType, msg.Payload, string(msg.Status), msg.CreatedAt,
	)
	if err != nil {
		return mapError("insert outbox message", err)
	}
	return nil
}

// Claim reserva mensajes pendientes moviendo next_retry_at al fin del lease.
// SKIP LOCKED permite varios relays sin que dos tomen el mismo mensaje.
func (r *OutboxRepo) Claim(ctx context.Context, limit int, lease time.Duration) ([]*entity.OutboxMessage, error) {
	now := time.Now().UTC()
	msgs := make([]*entity.OutboxMessage, 0, limit)
	err := pgxscan.Select(ctx, r.q, &msgs, `
		UPDATE outbox_messages
		SET next_retry_at = $1
		WHERE id IN (
			SELECT id FROM outbox_messages
			WHERE status = 'pending'
			  AND (next_retry_at IS NULL OR next_retry_at <= $2)
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+outboxColumns,
		now.Add(lease), now, limit,
	)
	if err != nil {
		return nil, mapError("claim outbox messages", err)
	}
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	return msgs, nil
}

// MarkPublished marca el mensaje como publicado.
func (r *OutboxRepo) MarkPublished(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE outbox_messages
		SET status = 'published', published_at = $1, next_retry_at = NULL
		WHERE id = $2`, time.Now().UTC(), id)
	if err != nil {
		return mapError("mark outbox published", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkFailed incrementa reintentos; sin nextRetry el mensaje queda fallido.
func (r *OutboxRepo) MarkFailed(ctx context.Context, id, lastError string, nextRetry *time.Time) error {
	status := entity.OutboxStatusPending
	if nextRetry == nil {
		status = entity.OutboxStatusFailed
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE outbox_messages
		SET retry_count = retry_count + 1, last_error = $1, next_retry_at = $2, status = $3
		WHERE id = $4`, lastError, nextRetry, string(status), id)
	if err != nil {
		return mapError("mark outbox failed", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
