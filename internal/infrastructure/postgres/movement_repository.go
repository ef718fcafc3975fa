package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/ManoGuzman/inventory-system/internal/domain"
	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/internal/domain/repository"
)

var (
	_ repository.MovementLedger = (*MovementRepo)(nil)
	_ repository.MovementReader = (*MovementRepo)(nil)
)

// MovementRepo libro de movimientos sobre PostgreSQL (usable con pool o tx).
// Append solo se llama desde el motor, dentro de su transacción.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Append inserta el movimiento y asigna su ID.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) error {
	if m.ProductID <= 0 || !m.Type.Valid() || m.Quantity <= 0 {
		return domain.ErrInvalidInput
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO inventory_movements (product_id, type, quantity, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		m.ProductID, string(m.Type), m.Quantity, m.Date,
	).Scan(&m.ID)
	if err != nil {
		return mapError("append movement", err)
	}
	return nil
}

func recordQuery() squirrel.SelectBuilder {
	return builder().
		Select("m.id", "m.product_id", "m.type", "m.quantity", "m.date",
			"p.code AS product_code", "p.name AS product_name").
		From("inventory_movements m").
		Join("products p ON p.id = m.product_id")
}

// GetByID obtiene un movimiento con los datos de su producto.
func (r *MovementRepo) GetByID(ctx context.Context, id int64) (*entity.MovementRecord, error) {
	sql, args, err := recordQuery().Where(squirrel.Eq{"m.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rec entity.MovementRecord
	if err := pgxscan.Get(ctx, r.q, &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, mapError("get movement", err)
	}
	return &rec, nil
}

// List aplica los filtros y ordena por fecha e ID descendentes.
func (r *MovementRepo) List(ctx context.Context, f entity.MovementFilter) ([]*entity.MovementRecord, error) {
	q := filterMovements(recordQuery(), f).OrderBy("m.date DESC", "m.id DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	list := make([]*entity.MovementRecord, 0)
	if err := pgxscan.Select(ctx, r.q, &list, sql, args...); err != nil {
		return nil, mapError("list movements", err)
	}
	return list, nil
}

// Count cuenta los movimientos que cumplen el filtro.
func (r *MovementRepo) Count(ctx context.Context, f entity.MovementFilter) (int, error) {
	sql, args, err := filterMovements(builder().Select("COUNT(*)").From("inventory_movements m"), f).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	var n int
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, mapError("count movements", err)
	}
	return n, nil
}

func filterMovements(q squirrel.SelectBuilder, f entity.MovementFilter) squirrel.SelectBuilder {
	if f.ProductID != nil {
		q = q.Where(squirrel.Eq{"m.product_id": *f.ProductID})
	}
	if f.Type != nil {
		q = q.Where(squirrel.Eq{"m.type": string(*f.Type)})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"m.date": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"m.date": *f.To})
	}
	return q
}

// Totals sumas de entradas y salidas del producto.
func (r *MovementRepo) Totals(ctx context.Context, productID int64) (entity.LedgerTotals, error) {
	var t entity.LedgerTotals
	err := pgxscan.Get(ctx, r.q, &t, `
		SELECT
			COALESCE(SUM(quantity) FILTER (WHERE type = 'IN'), 0)::bigint  AS total_in,
			COALESCE(SUM(quantity) FILTER (WHERE type = 'OUT'), 0)::bigint AS total_out,
			COUNT(*)                                                       AS movement_count
		FROM inventory_movements
		WHERE product_id = $1`, productID)
	if err != nil {
		return entity.LedgerTotals{}, mapError("ledger totals", err)
	}
	return t, nil
}
