// Package events publica los eventos encolados en la bandeja de salida transaccional.
package events

import (
	"context"
	"time"

	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/internal/domain/repository"
	"github.com/ManoGuzman/inventory-system/pkg/logger"
)

// Publisher envía un mensaje al broker.
type Publisher interface {
	Publish(ctx context.Context, msg *entity.OutboxMessage) error
}

// RelayConfig parámetros del relay.
type RelayConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int           // intentos antes de marcar el mensaje como fallido
	Lease        time.Duration // tiempo que un mensaje reclamado queda oculto para otros relays
	BaseBackoff  time.Duration // espera tras el intento n: n*BaseBackoff
}

func (c *RelayConfig) defaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 10
	}
	if c.Lease <= 0 {
		c.Lease = 30 * time.Second
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 5 * time.Second
	}
}

// Relay reclama mensajes pendientes y los publica. La entrega es al menos una vez:
// si el proceso cae tras publicar y antes de marcar, el mensaje se reenvía al vencer el lease.
type Relay struct {
	outbox    repository.OutboxReader
	publisher Publisher
	cfg       RelayConfig
	log       *logger.Logger
	now       func() time.Time
}

// NewRelay construye el relay.
func NewRelay(outbox repository.OutboxReader, publisher Publisher, cfg RelayConfig, log *logger.Logger) *Relay {
	cfg.defaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Relay{
		outbox:    outbox,
		publisher: publisher,
		cfg:       cfg,
		log:       log.Component("outbox_relay"),
		now:       time.Now,
	}
}

// Run procesa lotes hasta que ctx termine.
func (r *Relay) Run(ctx context.Context) {
	r.log.Info().Dur("poll_interval", r.cfg.PollInterval).Int("batch_size", r.cfg.BatchSize).Msg("relay iniciado")
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()
	for {
		// Lotes llenos se procesan seguidos; se espera solo cuando no queda trabajo.
		for {
			n, err := r.ProcessBatch(ctx)
			if err != nil {
				if ctx.Err() == nil {
					r.log.Error().Err(err).Msg("error procesando bandeja de salida")
				}
				break
			}
			if n < r.cfg.BatchSize {
				break
			}
		}
		select {
		case <-ctx.Done():
			r.log.Info().Msg("relay detenido")
			return
		case <-ticker.C:
		}
	}
}

// ProcessBatch reclama un lote y lo publica. Devuelve cuántos mensajes reclamó.
func (r *Relay) ProcessBatch(ctx context.Context) (int, error) {
	msgs, err := r.outbox.Claim(ctx, r.cfg.BatchSize, r.cfg.Lease)
	if err != nil {
		return 0, err
	}
	for _, msg := range msgs {
		if err := ctx.Err(); err != nil {
			return len(msgs), err
		}
		r.deliver(ctx, msg)
	}
	return len(msgs), nil
}

func (r *Relay) deliver(ctx context.Context, msg *entity.OutboxMessage) {
	err := r.publisher.Publish(ctx, msg)
	if err == nil {
		if mErr := r.outbox.MarkPublished(ctx, msg.ID); mErr != nil {
			r.log.Error().Err(mErr).Str("message_id", msg.ID).Msg("no se pudo marcar como publicado")
		}
		return
	}

	attempt := msg.RetryCount + 1
	var next *time.Time
	if attempt < r.cfg.MaxAttempts {
		at := r.now().UTC().Add(time.Duration(attempt) * r.cfg.BaseBackoff)
		next = &at
	}
	ev := r.log.Warn()
	if next == nil {
		ev = r.log.Error()
	}
	ev.Err(err).
		Str("message_id", msg.ID).
		Str("event_type", msg.EventType).
		Int("attempt", attempt).
		Bool("give_up", next == nil).
		Msg("fallo publicando evento")
	if mErr := r.outbox.MarkFailed(ctx, msg.ID, err.Error(), next); mErr != nil {
		r.log.Error().Err(mErr).Str("message_id", msg.ID).Msg("no se pudo registrar el fallo")
	}
}
