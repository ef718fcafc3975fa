package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManoGuzman/inventory-system/internal/domain"
	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/internal/domain/inventory"
	"github.com/ManoGuzman/inventory-system/internal/domain/repository"
	"github.com/ManoGuzman/inventory-system/pkg/logger"
)

var tracer = otel.Tracer("github.com/ManoGuzman/inventory-system/internal/application/inventory")

// EngineConfig límites de reintento del motor.
type EngineConfig struct {
	MaxRetries   int           // reintentos adicionales ante ErrConflict
	RetryBackoff time.Duration // espera base; el intento n espera n*RetryBackoff
}

// ApplyMovementInput movimiento a aplicar. Timestamp cero = ahora (UTC, precisión de microsegundos).
type ApplyMovementInput struct {
	ProductID int64
	Type      entity.MovementType
	Quantity  int64
	Timestamp time.Time
}

// ApplyMovementUseCase es el único escritor de la existencia de un producto y del libro de movimientos.
// Cada movimiento se aplica en una transacción con bloqueo exclusivo del producto:
// leer existencia, validar, escribir la nueva existencia, agregar el movimiento y encolar el evento.
type ApplyMovementUseCase struct {
	txRunner TxRunner
	cfg      EngineConfig
	log      *logger.Logger
	now      func() time.Time
}

// NewApplyMovementUseCase construye el caso de uso.
func NewApplyMovementUseCase(txRunner TxRunner, cfg EngineConfig, log *logger.Logger) *ApplyMovementUseCase {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &ApplyMovementUseCase{
		txRunner: txRunner,
		cfg:      cfg,
		log:      log.Component("movement_engine"),
		now:      time.Now,
	}
}

// Apply valida y aplica un movimiento. Errores posibles:
// domain.ErrInvalidInput, domain.ErrNotFound, *domain.InsufficientStockError,
// domain.ErrConflict (tras agotar reintentos), domain.ErrStorageFailure o el error del ctx.
func (uc *ApplyMovementUseCase) Apply(ctx context.Context, in ApplyMovementInput) (*entity.MovementRecord, error) {
	if in.ProductID <= 0 || !in.Type.Valid() || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	ts := in.Timestamp
	if ts.IsZero() {
		ts = uc.now()
	}
	// precisión de TIMESTAMPTZ
	ts = ts.UTC().Truncate(time.Microsecond)

	ctx, span := tracer.Start(ctx, "inventory.ApplyMovement", trace.WithAttributes(
		attribute.Int64("product.id", in.ProductID),
		attribute.String("movement.type", string(in.Type)),
		attribute.Int64("movement.quantity", in.Quantity),
	))
	defer span.End()

	var (
		rec *entity.MovementRecord
		err error
	)
	for attempt := 1; ; attempt++ {
		rec, err = uc.applyOnce(ctx, in, ts)
		if err == nil || !errors.Is(err, domain.ErrConflict) || attempt > uc.cfg.MaxRetries {
			break
		}
		uc.log.Warn().Err(err).
			Int64("product_id", in.ProductID).
			Int("attempt", attempt).
			Msg("conflicto de concurrencia, reintentando")
		if werr := wait(ctx, time.Duration(attempt)*uc.cfg.RetryBackoff); werr != nil {
			err = werr
			break
		}
	}
	span.SetAttributes(attribute.Bool("movement.applied", err == nil))
	if err != nil {
		uc.logFailure(in, err)
		if !errors.Is(err, domain.ErrInsufficientStock) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}

	uc.log.Info().
		Int64("movement_id", rec.ID).
		Int64("product_id", rec.ProductID).
		Str("type", string(rec.Type)).
		Int64("quantity", rec.Quantity).
		Msg("movimiento aplicado")
	return rec, nil
}

// applyOnce ejecuta un intento completo dentro de una transacción.
func (uc *ApplyMovementUseCase) applyOnce(ctx context.Context, in ApplyMovementInput, ts time.Time) (*entity.MovementRecord, error) {
	var (
		product *entity.Product
		mov     *entity.Movement
	)
	err := uc.txRunner.Run(ctx, func(
		ctx context.Context,
		products repository.ProductStore,
		ledger repository.MovementLedger,
		outbox repository.OutboxWriter,
	) error {
		// Bloquea el producto hasta el commit o rollback
		p, err := products.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		newQty, err := inventory.NextQuantity(p.ID, p.Quantity, in.Type, in.Quantity)
		if err != nil {
			return err
		}
		if err := products.SaveQuantity(ctx, p.ID, newQty, p.Version); err != nil {
			return err
		}
		m := &entity.Movement{
			ProductID: p.ID,
			Type:      in.Type,
			Quantity:  in.Quantity,
			Date:      ts,
		}
		if err := ledger.Append(ctx, m); err != nil {
			return err
		}
		msg, err := newMovementAppliedMessage(p, m, newQty)
		if err != nil {
			return err
		}
		if err := outbox.Enqueue(ctx, msg); err != nil {
			return err
		}
		product, mov = p, m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entity.MovementRecord{
		Movement:    *mov,
		ProductCode: product.Code,
		ProductName: product.Name,
	}, nil
}

func newMovementAppliedMessage(p *entity.Product, m *entity.Movement, quantityAfter int64) (*entity.OutboxMessage, error) {
	payload, err := json.Marshal(entity.MovementAppliedEvent{
		MovementID:    m.ID,
		ProductID:     p.ID,
		ProductCode:   p.Code,
		Type:          m.Type,
		Quantity:      m.Quantity,
		QuantityAfter: quantityAfter,
		Date:          m.Date,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal evento: %w", err)
	}
	return &entity.OutboxMessage{
		ID:          uuid.NewString(),
		AggregateID: p.ID,
		EventType:   entity.EventMovementApplied,
		Payload:     payload,
		Status:      entity.OutboxStatusPending,
		CreatedAt:   m.Date,
	}, nil
}

func (uc *ApplyMovementUseCase) logFailure(in ApplyMovementInput, err error) {
	var ev *zerolog.Event
	switch {
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrNotFound):
		ev = uc.log.Info()
	case errors.Is(err, domain.ErrConflict), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		ev = uc.log.Warn()
	default:
		ev = uc.log.Error()
	}
	ev.Err(err).
		Int64("product_id", in.ProductID).
		Str("type", string(in.Type)).
		Int64("quantity", in.Quantity).
		Msg("movimiento rechazado")
}

// wait duerme d o hasta que ctx termine.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
