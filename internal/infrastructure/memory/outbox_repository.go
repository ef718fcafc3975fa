package memory

import (
	"context"
	"time"

	"github.com/ManoGuzman/inventory-system/internal/domain"
	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/internal/domain/repository"
)

var _ repository.OutboxReader = (*OutboxRepo)(nil)

// OutboxRepo lado de lectura de la bandeja de salida (el relay).
type OutboxRepo struct {
	s *Store
}

// NewOutboxRepository construye el repositorio sobre el Store.
func NewOutboxRepository(s *Store) *OutboxRepo {
	return &OutboxRepo{s: s}
}

// Claim reserva mensajes pendientes en orden de creación moviendo NextRetryAt al fin del lease.
func (r *OutboxRepo) Claim(_ context.Context, limit int, lease time.Duration) ([]*entity.OutboxMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now().UTC()
	until := now.Add(lease)
	var out []*entity.OutboxMessage
	for _, msg := range r.s.outbox {
		if limit > 0 && len(out) >= limit {
			break
		}
		if msg.Status != entity.OutboxStatusPending {
			continue
		}
		if msg.NextRetryAt != nil && msg.NextRetryAt.After(now) {
			continue
		}
		msg.NextRetryAt = &until
		cp := *msg
		out = append(out, &cp)
	}
	return out, nil
}

// MarkPublished descarta el mensaje publicado.
func (r *OutboxRepo) MarkPublished(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.outboxByID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.outboxByID, id)
	for i, msg := range r.s.outbox {
		if msg.ID == id {
			r.s.outbox = append(r.s.outbox[:i], r.s.outbox[i+1:]...)
			break
		}
	}
	return nil
}

// MarkFailed incrementa reintentos; sin nextRetry el mensaje queda fallido.
func (r *OutboxRepo) MarkFailed(_ context.Context, id, lastError string, nextRetry *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	msg, ok := r.s.outboxByID[id]
	if !ok {
		return domain.ErrNotFound
	}
	msg.RetryCount++
	msg.LastError = &lastError
	msg.NextRetryAt = nextRetry
	if nextRetry == nil {
		msg.Status = entity.OutboxStatusFailed
	}
	return nil
}

// Pending cuenta mensajes pendientes.
func (r *OutboxRepo) Pending() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, msg := range r.s.outbox {
		if msg.Status == entity.OutboxStatusPending {
			n++
		}
	}
	return n
}
