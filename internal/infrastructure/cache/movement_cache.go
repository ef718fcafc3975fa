package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/internal/domain/repository"
	"github.com/ManoGuzman/inventory-system/pkg/logger"
)

const (
	keyPrefix  = "inventory:movement:"
	defaultTTL = 10 * time.Minute
)

var _ repository.MovementReader = (*MovementCache)(nil)

// MovementCache decora un MovementReader guardando en Redis los movimientos leídos por ID.
// Un movimiento confirmado no cambia; código y nombre del producto pueden quedar
// desactualizados hasta que venza el TTL. Listados y totales van siempre al lector.
// Si Redis falla se registra y se lee del lector.
type MovementCache struct {
	next   repository.MovementReader
	client redis.UniversalClient
	ttl    time.Duration
	log    *logger.Logger
}

// NewMovementCache construye el decorador. ttl <= 0 usa 10 minutos.
func NewMovementCache(next repository.MovementReader, client redis.UniversalClient, ttl time.Duration, log *logger.Logger) *MovementCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &MovementCache{next: next, client: client, ttl: ttl, log: log.Component("movement_cache")}
}

func key(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// GetByID busca en Redis y, si no está, en el lector.
func (c *MovementCache) GetByID(ctx context.Context, id int64) (*entity.MovementRecord, error) {
	raw, err := c.client.Get(ctx, key(id)).Bytes()
	switch {
	case err == nil:
		var rec entity.MovementRecord
		if jerr := json.Unmarshal(raw, &rec); jerr == nil {
			return &rec, nil
		}
		c.log.Warn().Int64("movement_id", id).Msg("entrada de caché corrupta")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Int64("movement_id", id).Msg("redis no disponible")
	}

	rec, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payload, jerr := json.Marshal(rec); jerr == nil {
		if serr := c.client.Set(ctx, key(id), payload, c.ttl).Err(); serr != nil {
			c.log.Warn().Err(serr).Int64("movement_id", id).Msg("no se pudo guardar en caché")
		}
	}
	return rec, nil
}

// List delega en el lector.
func (c *MovementCache) List(ctx context.Context, f entity.MovementFilter) ([]*entity.MovementRecord, error) {
	return c.next.List(ctx, f)
}

// Count delega en el lector.
func (c *MovementCache) Count(ctx context.Context, f entity.MovementFilter) (int, error) {
	return c.next.Count(ctx, f)
}

// Totals delega en el lector.
func (c *MovementCache) Totals(ctx context.Context, productID int64) (entity.LedgerTotals, error) {
	return c.next.Totals(ctx, productID)
}
