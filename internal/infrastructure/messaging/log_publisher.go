package messaging

import (
	"context"

	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/pkg/logger"
)

// LogPublisher registra los eventos en el log; se usa cuando no hay broker configurado.
type LogPublisher struct {
	log *logger.Logger
}

// NewLogPublisher construye el publicador.
func NewLogPublisher(log *logger.Logger) *LogPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &LogPublisher{log: log.Component("events")}
}

// Publish registra el evento.
func (p *LogPublisher) Publish(_ context.Context, msg *entity.OutboxMessage) error {
	p.log.Debug().
		Str("message_id", msg.ID).
		Str("event_type", msg.EventType).
		Int64("aggregate_id", msg.AggregateID).
		RawJSON("payload", msg.Payload).
		Msg("evento publicado")
	return nil
}

// Close no hace nada.
func (p *LogPublisher) Close() error { return nil }
