package memory

import (
	"context"
	"sort"

	"github.com/ManoGuzman/inventory-system/internal/domain"
	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/internal/domain/repository"
)

var _ repository.MovementReader = (*MovementRepo)(nil)

// MovementRepo lecturas sobre movimientos confirmados.
type MovementRepo struct {
	s *Store
}

// NewMovementRepository construye el lector sobre el Store.
func NewMovementRepository(s *Store) *MovementRepo {
	return &MovementRepo{s: s}
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(_ context.Context, id int64) (*entity.MovementRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.movements[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.s.record(m), nil
}

// List aplica los filtros y ordena por fecha e ID descendentes.
func (r *MovementRepo) List(_ context.Context, f entity.MovementFilter) ([]*entity.MovementRecord, error) {
	r.s.mu.RLock()
	out := make([]*entity.MovementRecord, 0)
	for _, m := range r.s.movements {
		if !matches(m, f) {
			continue
		}
		out = append(out, r.s.record(m))
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return paginate(out, f.Limit, f.Offset), nil
}

// Count cuenta los movimientos que cumplen el filtro.
func (r *MovementRepo) Count(_ context.Context, f entity.MovementFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, m := range r.s.movements {
		if matches(m, f) {
			n++
		}
	}
	return n, nil
}

// Totals sumas de entradas y salidas del producto.
func (r *MovementRepo) Totals(_ context.Context, productID int64) (entity.LedgerTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var t entity.LedgerTotals
	for _, m := range r.s.movements {
		if m.ProductID != productID {
			continue
		}
		t.Count++
		if m.Type == entity.MovementTypeIN {
			t.In += m.Quantity
		} else {
			t.Out += m.Quantity
		}
	}
	return t, nil
}

func matches(m *entity.Movement, f entity.MovementFilter) bool {
	if f.ProductID != nil && m.ProductID != *f.ProductID {
		return false
	}
	if f.Type != nil && m.Type != *f.Type {
		return false
	}
	if f.From != nil && m.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && m.Date.After(*f.To) {
		return false
	}
	return true
}
