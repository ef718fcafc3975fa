package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/ManoGuzman/inventory-system/internal/application/inventory"
	"github.com/ManoGuzman/inventory-system/internal/domain"
	"github.com/ManoGuzman/inventory-system/pkg/logger"
)

var tracer = otel.Tracer("github.com/ManoGuzman/inventory-system/internal/infrastructure/postgres")

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
	log         *logger.Logger
}

// NewTxRunner construye el runner con el pool. lockTimeout acota la espera de SELECT ... FOR UPDATE.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration, log *logger.Logger) *TxRunner {
	if log == nil {
		log = logger.Nop()
	}
	return &TxRunner{pool: pool, lockTimeout: lockTimeout, log: log.Component("postgres_tx")}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn inventory.TxFunc) (err error) {
	ctx, span := tracer.Start(ctx, "postgres.tx")
	defer func() {
		if err != nil && !errors.Is(err, domain.ErrInsufficientStock) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite})
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer func() {
		if err == nil {
			return
		}
		// ctx puede estar cancelado; el rollback debe completarse igual.
		if rbErr := tx.Rollback(context.Background()); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			r.log.Error().Err(rbErr).AnErr("original_error", err).Msg("rollback fallido")
		}
	}()

	if r.lockTimeout > 0 {
		if _, err = tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
			return mapError("set lock_timeout", err)
		}
	}

	products := NewProductStore(tx)
	ledger := NewMovementRepository(tx)
	outbox := NewOutboxRepository(tx)
	if err = fn(ctx, products, ledger, outbox); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}
